package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCatalog_EnumerationOrder(t *testing.T) {
	c := NewCatalog(LearningConfig{AlphaOptions: 2, BetaOptions: 3, GammaOptions: 4, Resolution: 100})
	require.Equal(t, 24, c.Len())

	// Gamma varies fastest, alpha slowest.
	assert.Equal(t, Strategy{AlphaIndex: 0, BetaIndex: 0, GammaIndex: 1, resolution: 100}, c.At(1))
	assert.Equal(t, Strategy{AlphaIndex: 0, BetaIndex: 1, GammaIndex: 0, resolution: 100}, c.At(4))
	assert.Equal(t, Strategy{AlphaIndex: 1, BetaIndex: 0, GammaIndex: 0, resolution: 100}, c.At(12))

	for i := 0; i < c.Len(); i++ {
		s := c.At(i)
		assert.Equal(t, i, c.Index(s.AlphaIndex, s.BetaIndex, s.GammaIndex))
	}
}

func TestStrategy_Values(t *testing.T) {
	c := NewCatalog(LearningConfig{AlphaOptions: 30, BetaOptions: 20, GammaOptions: 30, Resolution: 100})
	s := c.At(c.Index(0, 19, 29))
	assert.InDelta(t, 0.01, s.Alpha(), 1e-15)
	assert.InDelta(t, 0.20, s.Beta(), 1e-15)
	assert.InDelta(t, 0.30, s.Gamma(), 1e-15)
	assert.Equal(t, "(a=0,b=19,g=29)", s.String())
}

func TestNewCatalog_PanicsOnEmptyDimension(t *testing.T) {
	assert.Panics(t, func() {
		NewCatalog(LearningConfig{AlphaOptions: 0, BetaOptions: 1, GammaOptions: 1, Resolution: 100})
	})
	assert.Panics(t, func() {
		NewCatalog(LearningConfig{AlphaOptions: 1, BetaOptions: 1, GammaOptions: 1, Resolution: 0})
	})
}
