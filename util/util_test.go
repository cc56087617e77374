package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestArgMax(t *testing.T) {
	assert := assert.New(t)

	assert.Equal(2, ArgMax([]float64{0.1, 0.5, 0.9, 0.3}))
	assert.Equal(0, ArgMax([]int{7, 7, 7}))
	assert.Equal(-1, ArgMax([]float64{}))
}

func TestMax(t *testing.T) {
	assert := assert.New(t)

	assert.Equal(0.9, Max([]float64{0.1, 0.9, 0.3}))
	assert.Equal(0.0, Max([]float64{}))
}

func TestMedian(t *testing.T) {
	assert := assert.New(t)

	assert.Equal(3.0, Median([]float64{5, 1, 3}))
	assert.Equal(2.5, Median([]float64{4, 1, 2, 3}))
	assert.Equal(7.0, Median([]float64{7}))
	assert.Equal(0.0, Median([]float64{}))
}

func TestClamp(t *testing.T) {
	assert := assert.New(t)

	assert.Equal(5, Clamp(5, 0, 10))
	assert.Equal(0, Clamp(-3, 0, 10))
	assert.Equal(10, Clamp(42, 0, 10))
	assert.Equal(1.5, Clamp(2.0, 0.0, 1.5))
}
