package models

import "github.com/uptrace/bun"

// Contact is one contact-form submission. Message is NULL when left empty.
type Contact struct {
	bun.BaseModel `bun:"table:contacts"`

	ID      int64   `bun:"id,pk,autoincrement" json:"id"`
	Name    string  `bun:"name" json:"name"`
	Email   string  `bun:"email" json:"email"`
	Message *string `bun:"message" json:"message,omitempty"`
}
