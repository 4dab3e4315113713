package types

import "time"

// User represents a customer account in the system.
// It contains identity, contact details, and audit metadata.
type User struct {
	// ID is the unique identifier of the user.
	ID int `json:"id" db:"id"`

	// FullName is the user's display or full name.
	FullName string `json:"full_name" db:"full_name"`

	// Email is the user's email address. It is unique across all users
	// and doubles as a login identifier.
	Email string `json:"email" db:"email"`

	// Phone is the user's phone number in the form +7XXXXXXXXXX. It is
	// unique across all users and doubles as a login identifier.
	Phone string `json:"phone" db:"phone"`

	// PasswordHash stores the bcrypt hash of the user's password.
	// This field is never exposed in API responses.
	PasswordHash string `json:"-" db:"password_hash"`

	// CreatedAt is the timestamp when the user account was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent update to the user account.
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Identity is the authenticated view of a user handed to request handlers.
// It never carries credential material.
type Identity struct {
	ID        int       `json:"id"`
	FullName  string    `json:"full_name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Identity projects the user onto its credential-free view.
func (u User) Identity() Identity {
	return Identity{
		ID:        u.ID,
		FullName:  u.FullName,
		Email:     u.Email,
		Phone:     u.Phone,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
