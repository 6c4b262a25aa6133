// Package models defines the wire-level domain types consumed by the client:
// users, recipes, notes, and pagination metadata.
package models

import "time"

// User is the authenticated account, owned by the session store. It is
// immutable on the client except via a profile refetch.
type User struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Author is the denormalized recipe author embedded in Recipe payloads.
type Author struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}
