package tools

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChecksum(t *testing.T) {
	sum, skipped := Checksum([]float64{0.1, 0.2, -0.3, math.NaN(), math.Inf(1)}, 6)
	assert.Equal(t, "0", sum.String())
	assert.Equal(t, 2, skipped)

	sum, skipped = Checksum([]float64{3000, -1.25, 0.125}, 2)
	assert.Equal(t, "2998.88", sum.String())
	assert.Equal(t, 0, skipped)
}
