package model

import "time"

// User is provisioned by the external auth provider; this service only
// reads identity and display names.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	CreatedAt time.Time `json:"createdAt"`
}

// Ref returns the display projection of the user.
func (u User) Ref() UserRef {
	return UserRef{ID: u.ID, FirstName: u.FirstName, LastName: u.LastName}
}

// UserRef is the display projection of a user embedded in other records.
type UserRef struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// Category groups events for browsing.
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
