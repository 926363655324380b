package db

import (
	"context"

	"Portfolio/models"
)

// SeedProjects are the example rows inserted into an empty projects table.
// The bundled schema files insert the same rows.
func SeedProjects() []models.Project {
	return []models.Project{
		{
			Title:       "Cloud Infra Automation",
			Description: "Automated infra provisioning with Terraform and CI/CD.",
			Image:       "images/cloud_infra.svg",
			Link:        "#",
		},
		{
			Title:       "Real-time Monitoring",
			Description: "Monitoring solution using Prometheus & Grafana.",
			Image:       "images/monitoring.svg",
			Link:        "#",
		},
		{
			Title:       "Serverless App",
			Description: "Serverless file processing app on AWS Lambda.",
			Image:       "images/serverless.svg",
			Link:        "#",
		},
	}
}

// ListProjects returns every project, newest first.
func (p *Pool) ListProjects(ctx context.Context) ([]models.Project, error) {
	var list []models.Project
	if err := p.Bun.NewSelect().Model(&list).OrderExpr("id DESC").Scan(ctx); err != nil {
		return nil, err
	}
	return list, nil
}

// CountProjects returns the number of rows in projects.
func (p *Pool) CountProjects(ctx context.Context) (int, error) {
	var n int
	err := p.SQL.QueryRowContext(ctx, "SELECT COUNT(*) FROM projects").Scan(&n)
	return n, err
}

// InsertProjects writes all rows with a single multi-row INSERT.
func (p *Pool) InsertProjects(ctx context.Context, rows []models.Project) error {
	if len(rows) == 0 {
		return nil
	}
	_, err := p.Bun.NewInsert().Model(&rows).Exec(ctx)
	return err
}
