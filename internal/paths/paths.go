package paths

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
)

const (

	// Name used for directory and file naming.
	appName = "cruxlaunch"

	// Default permission mode for directories.
	DefaultDirMode os.FileMode = 0755

	// Default permission mode for files.
	DefaultFileMode os.FileMode = 0644
)

// Path to the directory holding user configuration.
//
//	Linux:   $XDG_CONFIG_HOME/cruxlaunch or ~/.config/cruxlaunch
//	macOS:   ~/Library/Application Support/cruxlaunch
func Config() string {
	return filepath.Join(xdg.ConfigHome, appName)
}

// Default path to the configuration file.
//
//	Linux:   $XDG_CONFIG_HOME/cruxlaunch/config.yaml
//	macOS:   ~/Library/Application Support/cruxlaunch/config.yaml
func ConfigFile() string {
	return filepath.Join(Config(), "config.yaml")
}

// Default path to the dotenv file holding connection settings.
//
//	Linux:   $XDG_CONFIG_HOME/cruxlaunch/.env
//	macOS:   ~/Library/Application Support/cruxlaunch/.env
func EnvFile() string {
	return filepath.Join(Config(), ".env")
}

// Path to the directory holding persistent state.
//
//	Linux:   $XDG_STATE_HOME/cruxlaunch or ~/.local/state/cruxlaunch
//	macOS:   ~/Library/Application Support/cruxlaunch
func State() string {
	return filepath.Join(xdg.StateHome, appName)
}

// Path to the metadata record of a run.
//
//	Linux:   $XDG_STATE_HOME/cruxlaunch/runs/<run>/metadata.json
//	macOS:   ~/Library/Application Support/cruxlaunch/runs/<run>/metadata.json
func RunMetadata(runID string) string {
	return filepath.Join(State(), "runs", runID, "metadata.json")
}
