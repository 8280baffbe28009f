package reports

import (
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"fleet-dispatch-api-server/internal/models"
)

func TestBuildKPICSV(t *testing.T) {
	driverID := primitive.NewObjectID()
	assignedAt := time.Date(2025, 3, 1, 10, 30, 0, 0, time.UTC)

	orders := []models.Order{
		{
			ID:          primitive.NewObjectID(),
			Origin:      "Valdemoro",
			Destination: "Getafe",
			Priority:    "Urgente",
			Plate:       "1234-ABC",
			Project:     "V429",
			Status:      models.OrderStatusAssigned,
			DriverID:    &driverID,
			CreatedAt:   time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC),
			AssignedAt:  &assignedAt,
		},
		{
			ID:          primitive.NewObjectID(),
			Origin:      "Pinto",
			Destination: "Parla",
			Priority:    "Normal",
			Status:      models.OrderStatusPending,
			CreatedAt:   time.Date(2025, 3, 1, 9, 5, 0, 0, time.UTC),
		},
	}

	data, err := BuildKPICSV(orders, map[string]string{driverID.Hex(): "Paco"})
	assert.NoError(t, err)

	records, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
	assert.NoError(t, err)
	assert.Len(t, records, 3)

	assert.Equal(t, kpiHeader, records[0])
	assert.Equal(t, "Valdemoro", records[1][2])
	assert.Equal(t, "Paco", records[1][8])
	assert.Equal(t, "2025-03-01 10:30:00", records[1][9])

	// Pending order: no driver, no assignment timestamp.
	assert.Equal(t, "", records[2][8])
	assert.Equal(t, "", records[2][9])
	assert.Equal(t, models.OrderStatusPending, records[2][7])
}

func TestBuildKPICSV_UnknownDriverFallsBackToID(t *testing.T) {
	driverID := primitive.NewObjectID()
	orders := []models.Order{
		{
			ID:        primitive.NewObjectID(),
			Status:    models.OrderStatusAssigned,
			DriverID:  &driverID,
			CreatedAt: time.Now(),
		},
	}

	data, err := BuildKPICSV(orders, nil)
	assert.NoError(t, err)
	assert.Contains(t, string(data), driverID.Hex())
}

func TestObjectKey(t *testing.T) {
	key := ObjectKey(time.Date(2025, 3, 1, 10, 30, 0, 0, time.UTC))
	assert.Equal(t, "reports/kpis-20250301-103000.csv", key)
}
