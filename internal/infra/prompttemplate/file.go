// Package prompttemplate loads the advice prompt template from disk or object storage.
package prompttemplate

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/yanqian/wearcast/internal/domain/advice"
)

// FileSource reads the template from a local file.
type FileSource struct {
	Path string
}

// Load implements advice.TemplateSource.
func (s FileSource) Load(_ context.Context) (string, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return "", fmt.Errorf("read prompt template: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

var _ advice.TemplateSource = FileSource{}
