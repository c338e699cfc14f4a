package server

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lissto-dev/composer/pkg/logging"
)

// GetOrCreateInstanceID returns the instance ID stored in path, generating and saving a new
// one when the file is missing or empty. An empty path yields a fresh ID that is not
// persisted.
func GetOrCreateInstanceID(path string) (string, error) {
	if path == "" {
		instanceID := uuid.New().String()
		logging.L().Info("generated ephemeral instance ID", zap.String("id", instanceID))
		return instanceID, nil
	}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return "", fmt.Errorf("failed to read instance ID file: %w", err)
	}
	if instanceID := strings.TrimSpace(string(data)); instanceID != "" {
		logging.L().Info("loaded existing instance ID", zap.String("id", instanceID))
		return instanceID, nil
	}

	instanceID := uuid.New().String()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("failed to create instance ID directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(instanceID+"\n"), 0o644); err != nil {
		return "", fmt.Errorf("failed to save instance ID: %w", err)
	}

	logging.L().Info("saved new instance ID",
		zap.String("id", instanceID),
		zap.String("file", path))
	return instanceID, nil
}
