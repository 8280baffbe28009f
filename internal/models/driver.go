package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Driver status values as stored. Anything else falls into the "other"
// bucket for display purposes.
const (
	DriverStatusFree = "libre"
	DriverStatusBusy = "ocupado"
)

// Driver documents are created and maintained by the external fleet process;
// this server only reads them and updates status/plate/project/activeOrderID
// on assignment, plus location through the ingest endpoint.
type Driver struct {
	ID             primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Name           string              `bson:"name" json:"name"`
	TractorPlate   string              `bson:"tractorPlate" json:"tractorPlate"`             // fixed tractor-unit plate
	CurrentPlate   string              `bson:"currentPlate,omitempty" json:"currentPlate"`   // trailer plate, set on assignment
	CurrentProject string              `bson:"currentProject,omitempty" json:"currentProject"`
	Status         string              `bson:"status" json:"status"`
	Location       bson.M              `bson:"location,omitempty" json:"location,omitempty"` // loose shape, see LatLon
	ActiveOrderID  *primitive.ObjectID `bson:"activeOrderID,omitempty" json:"activeOrderID,omitempty"`
	UpdatedAt      time.Time           `bson:"updatedAt" json:"updatedAt"`
}

// IsFree compares case-insensitively; status strings are written
// case-sensitive but external writers are not trusted on read.
func (d *Driver) IsFree() bool {
	return equalFold(d.Status, DriverStatusFree)
}

// LatLon resolves the driver position. Two shapes are accepted:
// {lat, lon} as written by the tracker ingest, and {latitude, longitude}
// as written by geopoint-style imports. Anything else means no location.
func (d *Driver) LatLon() (lat float64, lon float64, ok bool) {
	if d.Location == nil {
		return 0, 0, false
	}
	if lat, ok = asFloat(d.Location["lat"]); ok {
		if lon, ok = asFloat(d.Location["lon"]); ok {
			return lat, lon, true
		}
	}
	if lat, ok = asFloat(d.Location["latitude"]); ok {
		if lon, ok = asFloat(d.Location["longitude"]); ok {
			return lat, lon, true
		}
	}
	return 0, 0, false
}

// asFloat coerces the numeric types the BSON decoder can produce for an
// interface{} field.
func asFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}
