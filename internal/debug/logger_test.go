package debug

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInit(t *testing.T) {
	var buf bytes.Buffer
	prev := SetOutput(&buf)
	t.Cleanup(func() {
		Init(false)
		SetOutput(prev)
	})

	Init(false)
	assert.False(t, Enabled())
	Debug("hidden")
	Info("hidden")
	Warn("leak", "id", "abc")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "level=WARN msg=leak id=abc")

	buf.Reset()
	Init(true)
	assert.True(t, Enabled())
	With("driver", "sqlite").Debug("connect")
	assert.Contains(t, buf.String(), "level=DEBUG msg=connect driver=sqlite")
}
