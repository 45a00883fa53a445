package postgres

import (
	"context"
	"fmt"

	"github.com/Leopold1975/familysite/internal/familysite/domain/models"
	"github.com/Leopold1975/familysite/internal/pkg/pgtools"
	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type GalleriesPostgresRepo struct {
	db *pgxpool.Pool
}

func New(db *pgxpool.Pool) GalleriesPostgresRepo {
	return GalleriesPostgresRepo{
		db: db,
	}
}

func (gr GalleriesPostgresRepo) ListPublic(ctx context.Context) ([]models.Gallery, error) {
	q := pgtools.Builder.Select("id", "title", "slug", "folder", "description").
		From("galleries").
		Where(squirrel.Eq{"public": true}).
		OrderBy("id ASC")

	var galleries []models.Gallery

	err := pgtools.Query(ctx, gr.db, q, func(rows pgx.Rows) error {
		var g models.Gallery

		if err := rows.Scan(&g.ID, &g.Title, &g.Slug, &g.Folder, &g.Description); err != nil {
			return fmt.Errorf("scan error: %w", err)
		}

		galleries = append(galleries, g)

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list galleries error: %w", err)
	}

	return galleries, nil
}
