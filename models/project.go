package models

import "github.com/uptrace/bun"

// Project is a portfolio entry. Rows are only ever created by seeding.
type Project struct {
	bun.BaseModel `bun:"table:projects"`

	ID          int64  `bun:"id,pk,autoincrement" json:"id"`
	Title       string `bun:"title" json:"title"`
	Description string `bun:"description" json:"description"`
	Image       string `bun:"image" json:"image"`
	Link        string `bun:"link" json:"link"`
}
