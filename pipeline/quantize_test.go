package pipeline

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQuantizeSnapsToGrid(t *testing.T) {
	cases := []struct {
		seconds    float64
		beatLength float64
		want       float64
	}{
		{1.0, 1.0, 1},
		{0.5, 1.0, 0.5},
		{0.9, 1.0, 1},
		{1.4, 1.0, 1.5},
		{3.7, 1.0, 4},
		{0.05, 1.0, 0.125},
		{10.0, 1.0, 4},
		{0.45, 0.6, 0.75},
	}

	for _, c := range cases {
		name := fmt.Sprintf("%.2fs at beat %.2fs", c.seconds, c.beatLength)
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, c.want, QuantizeDuration(c.seconds, c.beatLength))
		})
	}
}

func TestQuantizeTieBreakPrefersFirstGridEntry(t *testing.T) {
	assert := assert.New(t)

	// 3 beats is equidistant from 4 and 2; the first grid entry wins
	assert.Equal(4.0, QuantizeDuration(3.0, 1.0))

	// 0.875 beats is equidistant from 1 and 0.75
	assert.Equal(1.0, QuantizeDuration(0.875, 1.0))
}

func TestQuantizeSecondsClosure(t *testing.T) {
	assert := assert.New(t)

	grid := map[float64]bool{4: true, 2: true, 1.5: true, 1: true, 0.75: true, 0.5: true, 0.25: true, 0.125: true}

	for _, beatLength := range []float64{0.25, 0.5, 0.75, 1.0, 1.5} {
		for d := 0.01; d < 6; d += 0.037 {
			ratio := QuantizeSeconds(d, beatLength) / beatLength
			found := false
			for g := range grid {
				if math.Abs(ratio-g) < 1e-9 {
					found = true
					break
				}
			}
			assert.True(found, "duration %.3f at beat %.2f quantized to off-grid ratio %v", d, beatLength, ratio)
		}
	}
}

func TestQuantizeNeverBelowMinimum(t *testing.T) {
	assert := assert.New(t)
	assert.GreaterOrEqual(QuantizeDuration(0.0001, 1.0), 0.125)
	assert.GreaterOrEqual(QuantizeDuration(0.001, 2.0), 0.125)
}
