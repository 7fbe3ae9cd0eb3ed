package tokenizer

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/wearcast/pkg/logger"
)

func TestCountFallsBackToWords(t *testing.T) {
	c := New("no-such-encoding", logger.Discard())

	n, estimated := c.Count("light jacket and  sunglasses")
	require.True(t, estimated)
	require.Equal(t, 4, n)
}
