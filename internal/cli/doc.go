// Parses flags and dispatches the cruxlaunch commands.
//
// The tool accepts the following global flags:
//
//	-q, --quiet     Suppress informational output.
//	-v, --verbose   Enable verbose output.
//	-d, --debug     Enable debug output.
//	    --config    Path to the configuration file.
//
// Flags override build-time defaults set via linker flags, and values from
// the configuration file fill in whatever the flags leave unset. After
// parsing, the global logger is rebuilt to reflect the final level and
// verbosity before the selected command runs.
package cli
