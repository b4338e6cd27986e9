package launch

import (
	"strings"

	"github.com/google/uuid"
)

// Length of generated run identifiers.
const runIDLen = 8

// Generates a short random run identifier.
func NewRunID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:runIDLen]
}
