package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/lissto-dev/composer/pkg/logging"
)

const (
	saveInterval    = 30 * time.Second
	fileCacheFormat = "1.0"
)

// FileCache is a MemoryCache persisted to a JSON file, so conversions survive restarts
// during development.
type FileCache struct {
	*MemoryCache
	filePath string
	saveMu   sync.Mutex
}

type fileCacheData struct {
	Entries map[string]*fileCacheEntry `json:"entries"`
	Version string                     `json:"version"`
}

type fileCacheEntry struct {
	Value     json.RawMessage `json:"value"`
	ExpiresAt time.Time       `json:"expires_at"`
}

// NewFileCache loads filePath when it exists and saves back to it periodically and on Close
func NewFileCache(filePath string) (*FileCache, error) {
	fc, err := openFileCache(filePath, time.Now)
	if err != nil {
		return nil, err
	}
	go fc.janitor(cleanupInterval)
	go fc.periodicSave()
	return fc, nil
}

func openFileCache(filePath string, now func() time.Time) (*FileCache, error) {
	if err := os.MkdirAll(filepath.Dir(filePath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	fc := &FileCache{
		MemoryCache: newMemoryCache(now),
		filePath:    filePath,
	}
	if err := fc.load(); err != nil {
		logging.L().Warn("failed to load cache file, starting empty",
			zap.String("file", filePath),
			zap.Error(err))
	}
	return fc, nil
}

func (fc *FileCache) periodicSave() {
	ticker := time.NewTicker(saveInterval)
	defer ticker.Stop()

	for {
		select {
		case <-fc.stop:
			return
		case <-ticker.C:
			if err := fc.Save(); err != nil {
				logging.L().Warn("failed to save cache file",
					zap.String("file", fc.filePath),
					zap.Error(err))
			}
		}
	}
}

func (fc *FileCache) load() error {
	data, err := os.ReadFile(fc.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	var fileData fileCacheData
	if err := json.Unmarshal(data, &fileData); err != nil {
		return fmt.Errorf("failed to unmarshal cache file: %w", err)
	}

	now := fc.now()
	loaded := 0
	for key, entry := range fileData.Entries {
		if entry == nil || now.After(entry.ExpiresAt) {
			continue
		}
		fc.restore(key, cacheEntry{value: entry.Value, expiresAt: entry.ExpiresAt})
		loaded++
	}

	logging.L().Debug("loaded cache file",
		zap.String("file", fc.filePath),
		zap.Int("entries", loaded))
	return nil
}

// Save writes the live entries to disk through a temp file and rename
func (fc *FileCache) Save() error {
	fc.saveMu.Lock()
	defer fc.saveMu.Unlock()

	fileData := fileCacheData{
		Version: fileCacheFormat,
		Entries: make(map[string]*fileCacheEntry),
	}
	for key, entry := range fc.snapshot() {
		fileData.Entries[key] = &fileCacheEntry{
			Value:     entry.value,
			ExpiresAt: entry.expiresAt,
		}
	}

	data, err := json.MarshalIndent(fileData, "", "  ")
	if err != nil {
		return err
	}
	tempFile := fc.filePath + ".tmp"
	if err := os.WriteFile(tempFile, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tempFile, fc.filePath)
}

// Close stops the background goroutines and saves one last time
func (fc *FileCache) Close() error {
	_ = fc.MemoryCache.Close()
	return fc.Save()
}
