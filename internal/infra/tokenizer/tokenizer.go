// Package tokenizer estimates prompt sizes with the cl100k_base BPE encoding.
package tokenizer

import (
	"log/slog"
	"strings"
	"sync"

	"github.com/pkoukk/tiktoken-go"

	"github.com/yanqian/wearcast/internal/domain/advice"
)

const defaultEncoding = "cl100k_base"

// Counter implements advice.TokenCounter. When the encoding cannot be loaded
// it counts whitespace-separated words instead and flags the result as estimated.
type Counter struct {
	encoding string
	logger   *slog.Logger

	once sync.Once
	enc  *tiktoken.Tiktoken
}

// New builds a counter for the given encoding name.
func New(encoding string, logger *slog.Logger) *Counter {
	if encoding == "" {
		encoding = defaultEncoding
	}
	return &Counter{encoding: encoding, logger: logger.With("component", "tokenizer")}
}

// Count implements advice.TokenCounter.
func (c *Counter) Count(text string) (int, bool) {
	c.once.Do(func() {
		enc, err := tiktoken.GetEncoding(c.encoding)
		if err != nil {
			c.logger.Warn("token encoding unavailable, falling back to word count", "encoding", c.encoding, "error", err)
			return
		}
		c.enc = enc
	})
	if c.enc == nil {
		return len(strings.Fields(text)), true
	}
	return len(c.enc.Encode(text, nil, nil)), false
}

var _ advice.TokenCounter = (*Counter)(nil)
