package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User struct matches the document in MongoDB. Only used in direct-auth
// mode; in delegated-session mode identity lives upstream.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Username     string             `bson:"username" json:"username"`
	PasswordHash string             `bson:"passwordHash" json:"-"`
	Role         string             `bson:"role" json:"role"`       // "admin" or "user"
	Modules      []string           `bson:"modules" json:"modules"` // per-module permissions; admins see everything
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
}

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// Dashboard module identifiers used by the permission middleware.
const (
	ModuleRealtime = "realtime"
	ModuleReports  = "reports"
)

// CanAccess reports whether the user may use a module.
func (u *User) CanAccess(moduleID string) bool {
	if u.Role == RoleAdmin {
		return true
	}
	for _, m := range u.Modules {
		if m == moduleID {
			return true
		}
	}
	return false
}
