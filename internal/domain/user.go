package domain

import "time"

// User is the domain model for accounts that own lead records.
// PasswordHash is never serialized in API responses.
type User struct {
	ID           string
	FirstName    string
	LastName     string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// CreatorRef is the expanded form of a lead's createdBy reference.
type CreatorRef struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
}
