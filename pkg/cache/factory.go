package cache

import (
	"go.uber.org/zap"

	"github.com/lissto-dev/composer/pkg/logging"
)

// NewConversionCache returns a file-backed cache when filePath is set and an in-memory one
// otherwise. A file cache that cannot be opened falls back to memory.
func NewConversionCache(filePath string) Cache {
	if filePath != "" {
		fileCache, err := NewFileCache(filePath)
		if err != nil {
			logging.L().Warn("failed to create file-based conversion cache, falling back to memory cache",
				zap.String("path", filePath),
				zap.Error(err))
			return NewMemoryCache()
		}
		logging.L().Info("initialized file-based conversion cache", zap.String("path", filePath))
		return fileCache
	}

	logging.L().Info("initialized in-memory conversion cache")
	return NewMemoryCache()
}
