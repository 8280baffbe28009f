package dispatch

import "fleet-dispatch-api-server/internal/models"

// SelectionPolicy picks the driver to assign among the current free drivers.
// The candidates slice is never empty.
type SelectionPolicy interface {
	Select(candidates []models.Driver) models.Driver
}

// FirstFree takes the first driver in the query's natural result order.
// This is the historical behavior of the operation.
type FirstFree struct{}

func (FirstFree) Select(candidates []models.Driver) models.Driver {
	return candidates[0]
}

// LongestIdle prefers the driver whose document has been untouched the
// longest, which approximates "waiting the longest since the last service".
type LongestIdle struct{}

func (LongestIdle) Select(candidates []models.Driver) models.Driver {
	best := candidates[0]
	for _, d := range candidates[1:] {
		if d.UpdatedAt.Before(best.UpdatedAt) {
			best = d
		}
	}
	return best
}
