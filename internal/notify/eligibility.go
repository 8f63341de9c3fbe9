package notify

import (
	"math"

	"thai-travel-portal/internal/models"
)

// MinProbability is the floor of the decaying display probability.
const MinProbability = 0.1

// Probability is the chance of showing again after views of max views.
func Probability(views, max int) float64 {
	if max <= 0 {
		return 0
	}
	return math.Max(MinProbability, 1-float64(views)/float64(max))
}

// CapReached reports whether the per-session view cap is exhausted.
func CapReached(n *models.PartnerNotification, views int) bool {
	return n.LimitShows && views >= n.MaxShowsPerSession
}

// ShouldShow applies the view cap and, for random notifications that were
// already seen, the decaying coin flip. roll must be uniform in [0, 1).
func ShouldShow(n *models.PartnerNotification, views int, roll float64) bool {
	if !n.LimitShows {
		return true
	}
	if CapReached(n, views) {
		return false
	}
	if n.ShowRandomly && views > 0 {
		return roll < Probability(views, n.MaxShowsPerSession)
	}
	return true
}
