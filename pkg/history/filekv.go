package history

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/sanagustin/chatwidget/pkg/logger"
)

// FileKV is a file-backed key-value store: one JSON object per file,
// rewritten on every Set. It stands in for the browser's local storage.
type FileKV struct {
	path string
	mu   sync.Mutex
	data map[string]string
}

// NewFileKV loads the store at path. A missing file starts empty; a
// corrupt file is logged and replaced on the next Set rather than
// blocking startup.
func NewFileKV(path string) (*FileKV, error) {
	kv := &FileKV{path: path, data: make(map[string]string)}

	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return kv, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	if err := json.Unmarshal(raw, &kv.data); err != nil {
		logger.WarnCF("history", "Store file is corrupt, starting empty",
			map[string]interface{}{"path": path, "error": err.Error()})
		kv.data = make(map[string]string)
	}
	return kv, nil
}

func (kv *FileKV) Get(key string) (string, bool, error) {
	kv.mu.Lock()
	defer kv.mu.Unlock()
	v, ok := kv.data[key]
	return v, ok, nil
}

func (kv *FileKV) Set(key, value string) error {
	kv.mu.Lock()
	defer kv.mu.Unlock()
	kv.data[key] = value

	data, err := json.MarshalIndent(kv.data, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(kv.path), 0755); err != nil {
		return err
	}
	return os.WriteFile(kv.path, data, 0644)
}
