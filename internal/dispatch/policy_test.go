package dispatch

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"fleet-dispatch-api-server/internal/models"
)

func TestFirstFreeKeepsQueryOrder(t *testing.T) {
	a := models.Driver{ID: primitive.NewObjectID(), Name: "Ana"}
	b := models.Driver{ID: primitive.NewObjectID(), Name: "Blas"}

	picked := FirstFree{}.Select([]models.Driver{a, b})
	assert.Equal(t, "Ana", picked.Name)
}

func TestLongestIdlePicksOldestUpdate(t *testing.T) {
	now := time.Now()
	fresh := models.Driver{Name: "Fresh", UpdatedAt: now}
	stale := models.Driver{Name: "Stale", UpdatedAt: now.Add(-2 * time.Hour)}
	middle := models.Driver{Name: "Middle", UpdatedAt: now.Add(-1 * time.Hour)}

	picked := LongestIdle{}.Select([]models.Driver{fresh, stale, middle})
	assert.Equal(t, "Stale", picked.Name)
}

func TestLongestIdleSingleCandidate(t *testing.T) {
	only := models.Driver{Name: "Solo"}
	assert.Equal(t, "Solo", LongestIdle{}.Select([]models.Driver{only}).Name)
}
