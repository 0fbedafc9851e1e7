package entity

import "github.com/google/uuid"

// Cashier identifies the logged-in operator. It comes from the auth token and
// is not stored by this service.
type Cashier struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}
