package buf

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnd(t *testing.T) {
	end, ok := End(10, 5)
	assert.True(t, ok)
	assert.Equal(t, 15, end)

	_, ok = End(math.MaxInt, 1)
	assert.False(t, ok, "overflow")

	_, ok = End(0, -1)
	assert.False(t, ok, "negative length")
}

func TestWithin(t *testing.T) {
	tests := []struct {
		name           string
		off, n, lo, hi int
		want           bool
	}{
		{"inside", 8, 8, 0, 32, true},
		{"touches high", 24, 8, 0, 32, true},
		{"past high", 25, 8, 0, 32, false},
		{"below low", 0, 8, 8, 32, false},
		{"empty at high", 32, 0, 0, 32, true},
		{"overflow", math.MaxInt - 4, 8, 0, math.MaxInt, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Within(tt.off, tt.n, tt.lo, tt.hi))
		})
	}
}

func TestWindow(t *testing.T) {
	data := []byte{0, 1, 2, 3, 4}

	got, ok := Window(data, 1, 3)
	assert.True(t, ok)
	assert.Equal(t, []byte{1, 2, 3}, got)

	_, ok = Window(data, 4, 2)
	assert.False(t, ok)
	_, ok = Window(data, -1, 1)
	assert.False(t, ok)
}
