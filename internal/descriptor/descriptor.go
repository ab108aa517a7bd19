// Package descriptor reads .mmj model descriptors and resolves the model file
// they point at.
//
// A descriptor is a JSON object; only files.gguf is required:
//
//	{"name": "Qwen3 VL 4B Thinking", "files": {"gguf": "qwen3-vl-4b.gguf"}}
//
// Relative model paths are taken relative to the directory holding the
// descriptor. The model file itself is not checked for existence; the
// llama-server child reports that.
package descriptor

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"mmjd/internal/common/fsutil"
)

// Descriptor is the decoded content of a .mmj file.
type Descriptor struct {
	Name  string `json:"name,omitempty"`
	Files Files  `json:"files"`
}

// Files lists the artifacts of a model.
type Files struct {
	GGUF string `json:"gguf"`
}

// Parse reads and decodes the descriptor at path and checks files.gguf is set.
func Parse(path string) (Descriptor, error) {
	var d Descriptor
	b, err := os.ReadFile(path)
	if err != nil {
		return d, notFoundError{path: path, err: err}
	}
	if len(bytes.TrimSpace(b)) == 0 {
		return d, invalidFormatError{path: path, err: errors.New("empty file")}
	}
	if err := json.Unmarshal(b, &d); err != nil {
		return d, invalidFormatError{path: path, err: err}
	}
	if strings.TrimSpace(d.Files.GGUF) == "" {
		return d, missingFieldError{path: path, field: "files.gguf"}
	}
	return d, nil
}

// Load parses the descriptor at path and returns the absolute model path.
func Load(path string) (string, error) {
	d, err := Parse(path)
	if err != nil {
		return "", err
	}
	return fsutil.ResolveFrom(filepath.Dir(path), d.Files.GGUF)
}
