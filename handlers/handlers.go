package handlers

import (
	"context"
	"fmt"

	"Portfolio/models"
)

// Store is what the routes need from the database. *db.Pool satisfies it.
type Store interface {
	ListProjects(ctx context.Context) ([]models.Project, error)
	CreateContact(ctx context.Context, c *models.Contact) (int64, error)
	Ping(ctx context.Context) error
}

// Handler serves every route. It holds no per-request state.
type Handler struct {
	store     Store
	views     views
	publicDir string
}

// New parses the page templates up front so a broken template fails
// startup instead of a request.
func New(store Store, templatesDir, publicDir string) (*Handler, error) {
	v, err := loadViews(templatesDir)
	if err != nil {
		return nil, fmt.Errorf("load templates from %s: %w", templatesDir, err)
	}
	return &Handler{store: store, views: v, publicDir: publicDir}, nil
}
