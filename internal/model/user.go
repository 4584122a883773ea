// Package model defines the data structures used throughout the application.
package model

// User is a named account owning a log of exercise activities.
//
// Activities are kept in the order they were appended. That order is only
// used as a tiebreak; queries always re-sort by date.
type User struct {
	ID         string     `json:"id"`
	Username   string     `json:"username"`
	Activities []Activity `json:"activities"`
}

// Summary returns the id/username projection of the user.
func (u *User) Summary() UserSummary {
	return UserSummary{ID: u.ID, Username: u.Username}
}

// UserSummary is the projection returned when creating and listing users.
type UserSummary struct {
	Username string `json:"username"`
	ID       string `json:"id"`
}
