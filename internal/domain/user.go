package domain

import "time"

// Role - роль пользователя
type Role string

const (
	RoleTeamMember Role = "Team Member"
	RoleManager    Role = "Manager"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleTeamMember, RoleManager:
		return true
	default:
		return false
	}
}

type User struct {
	ID           string    `db:"id" bson:"_id" json:"id"`
	Username     string    `db:"username" bson:"username" json:"username"`
	Role         Role      `db:"role" bson:"role" json:"role"`
	PasswordHash string    `db:"password_hash" bson:"password_hash" json:"-"`
	SessionToken string    `db:"session_token" bson:"session_token,omitempty" json:"-"`
	CreatedAt    time.Time `db:"created_at" bson:"created_at" json:"-"`
}

// UserSummary is the public part of a user attached to task views.
type UserSummary struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
}

func (u *User) Summary() *UserSummary {
	if u == nil {
		return nil
	}
	return &UserSummary{ID: u.ID, Username: u.Username, Role: u.Role}
}
