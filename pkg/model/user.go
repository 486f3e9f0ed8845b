package model

import "time"

type Role string

const (
	RolePatient Role = "patient"
	RoleDoctor  Role = "doctor"
	RoleAdmin   Role = "admin"
)

func (r Role) Valid() bool {
	return r == RolePatient || r == RoleDoctor || r == RoleAdmin
}

type User struct {
	ID        string    `bson:"_id,omitempty" json:"id"`
	FullName  string    `bson:"full_name" json:"full_name"`
	Email     string    `bson:"email" json:"email"`
	Mobile    string    `bson:"mobile" json:"mobile"`
	Role      Role      `bson:"role" json:"role"`
	IsActive  bool      `bson:"is_active" json:"is_active"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

// Actor is the authenticated party performing an operation.
type Actor struct {
	UserID string
	Role   Role
}

func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}
