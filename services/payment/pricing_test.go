package payment

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeTotal(t *testing.T) {
	assert.InDelta(t, 180.0, Tax(1000), 1e-9)
	assert.InDelta(t, 1180.0, ComputeTotal(1000, 0), 1e-9)
	assert.InDelta(t, 590.0, ComputeTotal(1000, 50), 1e-9)
	assert.InDelta(t, 0.0, ComputeTotal(1000, 100), 1e-9)
	assert.InDelta(t, 0.0, ComputeTotal(0, 0), 1e-9)
}

func TestComputeTotalMonotonicInOffer(t *testing.T) {
	prev := ComputeTotal(2500, 0)
	for offer := 5.0; offer <= 100; offer += 5 {
		cur := ComputeTotal(2500, offer)
		assert.Less(t, cur, prev, "offer %.0f%% must lower the total", offer)
		prev = cur
	}
}

func TestApplyDiscount(t *testing.T) {
	assert.InDelta(t, 1080.0, ApplyDiscount(1180, 100), 1e-9)
	assert.InDelta(t, 0.0, ApplyDiscount(1180, 1180), 1e-9, "discount equal to total clamps to zero")
	assert.InDelta(t, 0.0, ApplyDiscount(1180, 5000), 1e-9, "discount above total clamps to zero")
}

func TestPaiseAmount(t *testing.T) {
	assert.Equal(t, int64(118000), PaiseAmount(1180))
	assert.Equal(t, int64(118001), PaiseAmount(1180.006))
	assert.Equal(t, int64(117999), PaiseAmount(1179.994))
	assert.Equal(t, int64(59), PaiseAmount(ComputeTotal(1000, 99.95)))
	assert.Equal(t, int64(0), PaiseAmount(0))
}
