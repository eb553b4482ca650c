package query_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/chairemobilite/trrouting-go/internal/query"
)

func TestWithDefaultsFillsZeroValuedCaps(t *testing.T) {
	p := query.Parameters{}.WithDefaults()

	assert.Equal(t, query.DefaultMinWaitingTimeSeconds, p.MinWaitingTimeSeconds)
	assert.Equal(t, query.DefaultMaxAccessTravelTimeSeconds, p.MaxAccessTravelTimeSeconds)
	assert.Equal(t, query.DefaultMaxEgressTravelTimeSeconds, p.MaxEgressTravelTimeSeconds)
	assert.Equal(t, query.DefaultMaxTransferTravelTimeSeconds, p.MaxTransferTravelTimeSeconds)
	assert.Equal(t, query.DefaultMaxFirstWaitingTimeSeconds, p.MaxFirstWaitingTimeSeconds)
	assert.Equal(t, query.MaxInt, p.MaxTotalTravelTimeSeconds)
	assert.Equal(t, 1.0, p.WalkingSpeedFactor)
}

func TestWithDefaultsPreservesExplicitValues(t *testing.T) {
	p := query.Parameters{
		MinWaitingTimeSeconds:      60,
		MaxTotalTravelTimeSeconds:  3600,
		WalkingSpeedFactor:         1.5,
	}.WithDefaults()

	assert.Equal(t, 60, p.MinWaitingTimeSeconds)
	assert.Equal(t, 3600, p.MaxTotalTravelTimeSeconds)
	assert.Equal(t, 1.5, p.WalkingSpeedFactor)
	// Untouched fields still pick up their defaults.
	assert.Equal(t, query.DefaultMaxAccessTravelTimeSeconds, p.MaxAccessTravelTimeSeconds)
}

func TestIsForwardReflectsTimeType(t *testing.T) {
	assert.True(t, query.Parameters{TimeType: query.TimeTypeDeparture}.IsForward())
	assert.False(t, query.Parameters{TimeType: query.TimeTypeArrival}.IsForward())
}
