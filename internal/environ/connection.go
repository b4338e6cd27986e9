package environ

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Endpoint used when no base URL is configured anywhere.
const DefaultBaseURL = "https://api.wandb.ai"

// Fills in connection settings that were not given explicitly.
//
// Each field is taken from the first source that sets it: the explicit
// value, the process environment, then the dotenv file at envFile (when
// envFile is non-empty and exists). The API key is required.
func LoadConnection(explicit Connection, envFile string) (Connection, error) {
	fileVars := map[string]string{}
	if envFile != "" {
		vars, err := godotenv.Read(envFile)
		switch {
		case err == nil:
			fileVars = vars
		case errors.Is(err, fs.ErrNotExist):
		default:
			return Connection{}, fmt.Errorf("%w: %s: %w", ErrConnection, envFile, err)
		}
	}

	lookup := func(key string) string {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			return v
		}
		return strings.TrimSpace(fileVars[key])
	}

	conn := explicit
	if conn.BaseURL == "" {
		conn.BaseURL = lookup(KeyBaseURL)
	}
	if conn.BaseURL == "" {
		conn.BaseURL = DefaultBaseURL
	}
	if conn.APIKey == "" {
		conn.APIKey = lookup(KeyAPIKey)
	}

	if conn.APIKey == "" {
		return Connection{}, fmt.Errorf("%w: no API key; set %s or pass --api-key", ErrConnection, KeyAPIKey)
	}

	return conn, nil
}
