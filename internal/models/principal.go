package models

import "go.mongodb.org/mongo-driver/bson/primitive"

const (
	RoleAdmin   = "admin"
	RoleTeacher = "teacher"
	RoleStudent = "student"
)

// Principal is the authenticated actor behind a request. It is resolved from
// the users collection and treated as read-only input; account management
// belongs to the authentication service.
type Principal struct {
	ID       primitive.ObjectID `bson:"_id" json:"id"`
	Username string             `bson:"username" json:"username"`
	Tier     Tier               `bson:"plan" json:"tier"`
	Role     string             `bson:"role" json:"role"`
}

// Privileged reports whether the principal may author content.
func (p *Principal) Privileged() bool {
	return p.Role == RoleAdmin || p.Role == RoleTeacher
}
