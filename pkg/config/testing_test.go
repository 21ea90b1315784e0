package config

import (
	"os"
	"path/filepath"
	"testing"
)

// writeConfig writes content to a config file in a temp dir and returns its path.
func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "guard.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return path
}

// hasFieldError reports whether err is a ValidationError naming field.
func hasFieldError(err error, field string) bool {
	verr, ok := err.(ValidationError)
	if !ok {
		return false
	}
	for _, fe := range verr.Errors {
		if fe.Field == field {
			return true
		}
	}
	return false
}
