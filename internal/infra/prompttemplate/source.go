package prompttemplate

import (
	"log/slog"
	"strings"

	"github.com/yanqian/wearcast/internal/domain/advice"
)

// Config selects where the template comes from. Object storage wins over a file;
// with neither set the built-in template is used.
type Config struct {
	Path   string
	Object ObjectConfig
}

// New returns the configured source, or nil for the built-in template.
func New(cfg Config, logger *slog.Logger) (advice.TemplateSource, error) {
	if strings.TrimSpace(cfg.Object.Bucket) != "" && strings.TrimSpace(cfg.Object.Key) != "" {
		src, err := NewObjectSource(cfg.Object, logger)
		if err != nil {
			return nil, err
		}
		return src, nil
	}
	if strings.TrimSpace(cfg.Path) != "" {
		return FileSource{Path: cfg.Path}, nil
	}
	return nil, nil
}
