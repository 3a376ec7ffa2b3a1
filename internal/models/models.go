package models

import (
	"time"
)

const (
	RoleMember = "member"
	RoleStaff  = "staff"
)

const DefaultColor = "#3b82f6"

type User struct {
	ID        int       `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Role      string    `json:"role"`
	Password  string    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Label is the shape shared by categories and tags. A nil UserID marks a
// shared default visible to everyone.
type Label struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	Color  string `json:"color"`
	UserID *int   `json:"user"`
}

type (
	Category = Label
	Tag      = Label
)

// OwnedBy reports whether userID may write to the label.
func (l Label) OwnedBy(userID int) bool {
	return l.UserID != nil && *l.UserID == userID
}

// VisibleTo reports whether userID may read the label.
func (l Label) VisibleTo(userID int) bool {
	return l.UserID == nil || *l.UserID == userID
}
