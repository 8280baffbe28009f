package view

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"fleet-dispatch-api-server/internal/models"
)

func driverAt(name string, loc bson.M) models.Driver {
	return models.Driver{
		ID:           primitive.NewObjectID(),
		Name:         name,
		TractorPlate: "1111-AAA",
		Status:       models.DriverStatusFree,
		Location:     loc,
	}
}

func TestReduceDrivers_AddsMarkersForBothCoordinateShapes(t *testing.T) {
	plain := driverAt("Paco", bson.M{"lat": 40.19, "lon": -3.68})
	geo := driverAt("Luisa", bson.M{"latitude": 40.20, "longitude": -3.70})
	noLoc := driverAt("Pedro", nil)

	state, payload := ReduceDrivers(MarkerState{}, []models.Driver{plain, geo, noLoc})

	assert.Len(t, payload.Rows, 3)
	assert.Equal(t, 3, payload.FreeCount)
	assert.Len(t, payload.Markers, 2)
	for _, m := range payload.Markers {
		assert.Equal(t, MarkerAdd, m.Op)
	}
	assert.Len(t, state, 2)
	assert.NotContains(t, state, noLoc.ID.Hex())
}

func TestReduceDrivers_MovesOnlyWhenPositionChanged(t *testing.T) {
	moving := driverAt("Paco", bson.M{"lat": 40.19, "lon": -3.68})
	idle := driverAt("Luisa", bson.M{"lat": 41.00, "lon": -3.00})

	state, _ := ReduceDrivers(MarkerState{}, []models.Driver{moving, idle})

	moving.Location = bson.M{"lat": 40.25, "lon": -3.69}
	state, payload := ReduceDrivers(state, []models.Driver{moving, idle})

	assert.Len(t, payload.Markers, 1)
	assert.Equal(t, MarkerMove, payload.Markers[0].Op)
	assert.Equal(t, moving.ID.Hex(), payload.Markers[0].DriverID)
	assert.Equal(t, Coord{Lat: 40.25, Lon: -3.69}, state[moving.ID.Hex()])
}

func TestReduceDrivers_RemovesMarkerWhenDriverDisappears(t *testing.T) {
	staying := driverAt("Paco", bson.M{"lat": 40.19, "lon": -3.68})
	leaving := driverAt("Luisa", bson.M{"lat": 41.00, "lon": -3.00})

	state, _ := ReduceDrivers(MarkerState{}, []models.Driver{staying, leaving})
	assert.Len(t, state, 2)

	// Next full snapshot no longer contains the second driver.
	state, payload := ReduceDrivers(state, []models.Driver{staying})

	assert.Len(t, payload.Markers, 1)
	assert.Equal(t, MarkerRemove, payload.Markers[0].Op)
	assert.Equal(t, leaving.ID.Hex(), payload.Markers[0].DriverID)
	assert.NotContains(t, state, leaving.ID.Hex())
}

func TestReduceDrivers_FreeCountIsCaseInsensitive(t *testing.T) {
	a := driverAt("Paco", nil)
	a.Status = "LIBRE"
	b := driverAt("Luisa", nil)
	b.Status = models.DriverStatusBusy
	c := driverAt("Pedro", nil)
	c.Status = "de baja"

	_, payload := ReduceDrivers(MarkerState{}, []models.Driver{a, b, c})

	assert.Equal(t, 1, payload.FreeCount)
	assert.Equal(t, BadgeFree, payload.Rows[0].Badge)
	assert.Equal(t, BadgeBusy, payload.Rows[1].Badge)
	assert.Equal(t, BadgeOther, payload.Rows[2].Badge)
}

func TestReduceOrders_CountsAndAssignAction(t *testing.T) {
	pending := models.Order{ID: primitive.NewObjectID(), Status: models.OrderStatusPending}
	assigned := models.Order{ID: primitive.NewObjectID(), Status: models.OrderStatusAssigned}
	finalized := models.Order{ID: primitive.NewObjectID(), Status: models.OrderStatusFinalized}

	payload := ReduceOrders([]models.Order{pending, assigned, finalized})

	assert.Equal(t, 3, payload.Total)
	assert.Equal(t, 2, payload.Active)
	assert.True(t, payload.Rows[0].CanAssign)
	assert.False(t, payload.Rows[1].CanAssign)
	assert.False(t, payload.Rows[2].CanAssign)
	assert.Len(t, payload.Rows[0].ShortID, 6)
}

func TestReduceOrders_EmptySnapshot(t *testing.T) {
	payload := ReduceOrders(nil)
	assert.NotNil(t, payload.Rows)
	assert.Equal(t, 0, payload.Total)
	assert.Equal(t, 0, payload.Active)
}
