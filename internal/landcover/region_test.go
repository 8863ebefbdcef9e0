package landcover

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewRegion_Dimensions(t *testing.T) {
	r := NewRegion(1000, 2000, 250)

	assert.Equal(t, 750.0, r.MinX)
	assert.Equal(t, 1250.0, r.MaxX)
	assert.Equal(t, 1750.0, r.MinY)
	assert.Equal(t, 2250.0, r.MaxY)
	assert.Equal(t, 500.0, r.MaxX-r.MinX, "side length should be 2*radius")
}

func TestRegion_Contains(t *testing.T) {
	r := NewRegion(0, 0, 100)

	assert.True(t, r.Contains(0, 0))
	assert.True(t, r.Contains(-100, -100), "lower edges are inclusive")
	assert.False(t, r.Contains(100, 0), "upper edges are exclusive")
	assert.False(t, r.Contains(0, 100), "upper edges are exclusive")
	assert.False(t, r.Contains(101, 0))
}
