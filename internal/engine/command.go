package engine

import (
	"fmt"
	"maps"
	"slices"

	"github.com/alessio/shellescape"
)

// Builds the command line that runs image with the given environment and
// extra engine arguments.
//
// Environment variables and engine arguments are emitted in sorted key
// order. Single-character argument names become short flags and longer ones
// long flags. A true value produces a bare flag, a slice repeats the flag for
// each element, and any other value is formatted after the flag.
// Every token is shell-quoted, so the result can be joined with spaces and
// pasted into a shell.
func RunCommand(binary, image string, env map[string]string, args map[string]any) []string {
	cmd := []string{shellescape.Quote(binary), "run", "--rm"}

	for _, k := range slices.Sorted(maps.Keys(env)) {
		cmd = append(cmd, "-e", shellescape.Quote(k)+"="+shellescape.Quote(env[k]))
	}

	for _, name := range slices.Sorted(maps.Keys(args)) {
		flag := shellescape.Quote(flagName(name))

		switch v := args[name].(type) {
		case bool:
			if v {
				cmd = append(cmd, flag)
			} else {
				cmd = append(cmd, flag, "false")
			}
		case []string:
			for _, s := range v {
				cmd = append(cmd, flag, shellescape.Quote(s))
			}
		case []any:
			for _, s := range v {
				cmd = append(cmd, flag, shellescape.Quote(fmt.Sprint(s)))
			}
		default:
			cmd = append(cmd, flag, shellescape.Quote(fmt.Sprint(v)))
		}
	}

	return append(cmd, shellescape.Quote(image))
}

func flagName(name string) string {
	if len(name) == 1 {
		return "-" + name
	}
	return "--" + name
}
