package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/Leopold1975/familysite/internal/familysite/domain/models"
	"github.com/Leopold1975/familysite/internal/pkg/pgtools"
	"github.com/Leopold1975/familysite/pkg/logger"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type LinksPostgresRepo struct {
	db *pgxpool.Pool
	lg logger.Logger
}

func New(db *pgxpool.Pool, lg logger.Logger) LinksPostgresRepo {
	return LinksPostgresRepo{
		db: db,
		lg: lg,
	}
}

// GetLinks returns every siteslinks row in table order. Rows that cannot be
// scanned or normalized are logged and skipped.
func (lr LinksPostgresRepo) GetLinks(ctx context.Context) ([]models.Link, error) {
	q := pgtools.Builder.Select("title", "link", "comment", "level::text").
		From("siteslinks").
		OrderBy("id")

	var links []models.Link

	err := pgtools.Query(ctx, lr.db, q, lr.collectLink(&links))
	if err != nil {
		return nil, fmt.Errorf("get links error: %w", err)
	}

	return links, nil
}

// collectLink appends each usable row to links. Rows that fail to scan or
// are malformed are logged and skipped so the rest of the batch still loads.
func (lr LinksPostgresRepo) collectLink(links *[]models.Link) func(pgx.Rows) error {
	return func(rows pgx.Rows) error {
		var row models.LinkRow

		if err := rows.Scan(&row.Title, &row.URL, &row.Comment, &row.Level); err != nil {
			lr.lg.Warnf("skipping menu row: scan error: %s", err.Error())

			return nil
		}

		l, err := models.NewLink(row)
		if err != nil {
			if errors.Is(err, models.ErrMalformedLink) {
				lr.lg.Warnf("skipping malformed menu row (comment %q): %s", str(row.Comment), err.Error())

				return nil
			}

			return fmt.Errorf("new link error: %w", err)
		}

		*links = append(*links, l)

		return nil
	}
}

func str(p *string) string {
	if p == nil {
		return ""
	}

	return *p
}
