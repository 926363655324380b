package db

import (
	"context"

	"Portfolio/models"
)

// CreateContact stores a submission and returns its generated id.
func (p *Pool) CreateContact(ctx context.Context, c *models.Contact) (int64, error) {
	res, err := p.Bun.NewInsert().Model(c).Column("name", "email", "message").Returning("id").Exec(ctx)
	if err != nil {
		return 0, err
	}
	// MySQL has no RETURNING; fall back to the driver's insert id.
	if c.ID == 0 {
		id, err := res.LastInsertId()
		if err != nil {
			return 0, err
		}
		c.ID = id
	}
	return c.ID, nil
}
