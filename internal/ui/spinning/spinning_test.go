package spinning

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSpinning(t *testing.T) {
	var buf bytes.Buffer
	s := NewWithWriter(context.Background(), &buf, ThemeAscii, time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	s.Done()
	s.Done() // Idempotent.
	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "\033[?25l"))
	assert.True(t, strings.HasSuffix(out, "\b\b\033[?25h"))
	assert.Contains(t, out, "|")
}
