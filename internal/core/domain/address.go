package domain

import "time"

// OwnedResource is anything that belongs to exactly one principal.
type OwnedResource interface {
	OwnerID() string
}

// Address is a postal address owned by a single user. UserID is set at
// creation from the verified principal and never changes.
type Address struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Street    string    `json:"street"`
	City      string    `json:"city"`
	State     string    `json:"state"`
	ZipCode   string    `json:"zip_code"`
	Country   string    `json:"country"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (a *Address) OwnerID() string { return a.UserID }
