package palette

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveKnownAndUnknown(t *testing.T) {
	p := Default()

	hex, ok := p.Resolve("green")
	assert.True(t, ok)
	assert.Equal(t, "#4caf50", hex)

	_, ok = p.Resolve("chartreuse")
	assert.False(t, ok)
	assert.Equal(t, "#2196f3", p.Color("chartreuse"))
	assert.Equal(t, "#2196f3", p.Color(""))
}

func TestOrderAndAt(t *testing.T) {
	p := Default()
	assert.Equal(t, 9, p.Len())
	assert.Equal(t, []string{"yellow", "green", "blue", "purple", "pink", "orange", "red", "gray", "cyan"}, p.Keys())
	assert.Equal(t, "#f57c00", p.At(0))
	assert.Equal(t, "#f57c00", p.At(9))
	assert.Equal(t, "#00bcd4", p.At(17))
}

func TestNewOverridesDuplicates(t *testing.T) {
	p := New(Entry{"a", "#111111"}, Entry{"b", "#222222"}, Entry{"a", "#333333"})
	assert.Equal(t, 2, p.Len())
	assert.Equal(t, "#333333", p.At(0))
	// no "blue" in this palette: fallback is the first entry
	assert.Equal(t, "#333333", p.Color("missing"))
}
