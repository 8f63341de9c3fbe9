package notify

import (
	"testing"

	"thai-travel-portal/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestShouldShow_Unlimited(t *testing.T) {
	n := &models.PartnerNotification{LimitShows: false, ShowRandomly: true, MaxShowsPerSession: 1}
	for views := 0; views < 5; views++ {
		assert.True(t, ShouldShow(n, views, 0.99))
	}
}

func TestShouldShow_CapIsDeterministic(t *testing.T) {
	n := &models.PartnerNotification{LimitShows: true, MaxShowsPerSession: 2, ShowRandomly: false}

	assert.True(t, ShouldShow(n, 0, 0.99))
	assert.True(t, ShouldShow(n, 1, 0.99))
	for _, roll := range []float64{0, 0.05, 0.5, 0.999} {
		assert.False(t, ShouldShow(n, 2, roll), "third check after two views")
	}
}

func TestShouldShow_RandomDecay(t *testing.T) {
	n := &models.PartnerNotification{LimitShows: true, MaxShowsPerSession: 4, ShowRandomly: true}

	// first view is never subject to the coin flip
	assert.True(t, ShouldShow(n, 0, 0.999))

	// 1 of 4 seen: p = 0.75
	assert.True(t, ShouldShow(n, 1, 0.74))
	assert.False(t, ShouldShow(n, 1, 0.75))

	// 3 of 4 seen: p = 0.25
	assert.True(t, ShouldShow(n, 3, 0.2))
	assert.False(t, ShouldShow(n, 3, 0.3))
}

func TestProbability_Floor(t *testing.T) {
	assert.InDelta(t, 0.1, Probability(9, 10), 1e-9)
	assert.GreaterOrEqual(t, Probability(9, 10), MinProbability)
	assert.Equal(t, MinProbability, Probability(10, 10))
	assert.InDelta(t, 0.5, Probability(5, 10), 1e-9)
	assert.Equal(t, 0.0, Probability(1, 0))

	n := &models.PartnerNotification{LimitShows: true, MaxShowsPerSession: 10, ShowRandomly: true}
	assert.True(t, ShouldShow(n, 9, 0.09))
	assert.False(t, ShouldShow(n, 9, 0.11))
}
