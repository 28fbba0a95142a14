package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEllipsoidalDistance(t *testing.T) {
	// One degree of latitude near Vancouver Island is about 111.3 km.
	d := EllipsoidalDistance(48.0, -123.0, 49.0, -123.0)
	assert.InDelta(t, 111.3, d, 0.5)

	// Albert Head to Port Angeles, roughly across the Strait of Juan de Fuca.
	d = EllipsoidalDistance(48.39, -123.49, 48.11, -123.44)
	assert.Greater(t, d, 25.0)
	assert.Less(t, d, 40.0)

	assert.Zero(t, EllipsoidalDistance(48.0, -123.0, 48.0, -123.0))
}
