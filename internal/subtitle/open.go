package subtitle

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ReadFile loads an SRT or JSON entries file from disk
func ReadFile(path string) (*Content, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".srt" && ext != ".json" {
		return nil, fmt.Errorf("unsupported subtitle format: %s", ext)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read subtitle file: %w", err)
	}

	content, err := ParseContent(string(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}
	return content, nil
}
