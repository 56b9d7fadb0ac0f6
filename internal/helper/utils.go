package helper

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// GenerateUniqueName returns "<prefix>_<8 hex chars>", e.g. "collection_3fa85f64".
func GenerateUniqueName(prefix string) string {
	id := uuid.New()
	return fmt.Sprintf("%s_%s", prefix, id.String()[:8])
}

// CreateFolder makes the directory (and parents) if it does not exist.
func CreateFolder(path string) error {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return fmt.Errorf("failed to create folder %s: %w", path, err)
	}
	return nil
}

// pretty print
func PrettyPrint(v interface{}) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		log.Warn().Msg("Error pretty printing")
	}
	fmt.Println(string(b))
}
