package kompose

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/lissto-dev/composer/pkg/logging"
)

const (
	scratchPattern  = "kompose-*"
	composeFileName = "docker-compose.yaml"
)

// withScratchDir creates a uniquely named directory under root (os.TempDir when empty), runs
// fn in it and removes the directory afterwards, whatever fn returns or if it panics.
func withScratchDir(root string, fn func(dir string) error) error {
	dir, err := os.MkdirTemp(root, scratchPattern)
	if err != nil {
		return fmt.Errorf("failed to create scratch directory: %w", err)
	}
	logging.L().Debug("created scratch directory", zap.String("dir", dir))

	defer func() {
		if err := os.RemoveAll(dir); err != nil {
			logging.L().Warn("failed to remove scratch directory",
				zap.String("dir", dir),
				zap.Error(err))
		}
	}()

	return fn(dir)
}
