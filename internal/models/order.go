package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Order status values as stored. Written case-sensitive; display logic
// compares case-insensitively.
const (
	OrderStatusPending   = "pendiente"
	OrderStatusAssigned  = "asignado"
	OrderStatusFinalized = "finalizado"
)

// DefaultPriority is a free-text category, not an enum.
const DefaultPriority = "Normal"

// Order is a requested vehicle movement. Created here with status
// "pendiente" and mutated exactly once by assignment; the transition to
// "finalizado" is done by an external process.
type Order struct {
	ID          primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Origin      string              `bson:"origin" json:"origin"`
	Destination string              `bson:"destination" json:"destination"`
	Priority    string              `bson:"priority" json:"priority"`
	Plate       string              `bson:"plate" json:"plate"`     // canonical NNNN-LLL, may be empty
	Project     string              `bson:"project" json:"project"` // canonical LETTERS+DIGITS, may be empty
	Status      string              `bson:"status" json:"status"`
	DriverID    *primitive.ObjectID `bson:"driverID" json:"driverID"`
	CreatedAt   time.Time           `bson:"createdAt" json:"createdAt"`
	AssignedAt  *time.Time          `bson:"assignedAt,omitempty" json:"assignedAt,omitempty"`
}

func (o *Order) IsPending() bool {
	return equalFold(o.Status, OrderStatusPending)
}

func (o *Order) IsFinalized() bool {
	return equalFold(o.Status, OrderStatusFinalized)
}

// ShortID is the display identifier, the last 6 characters of the hex id.
func (o *Order) ShortID() string {
	s := o.ID.Hex()
	if len(s) <= 6 {
		return s
	}
	return s[len(s)-6:]
}
