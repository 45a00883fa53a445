package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/Leopold1975/familysite/internal/familysite/domain/models"
	"github.com/Leopold1975/familysite/internal/familysite/repository/mediarepo"
	"github.com/Leopold1975/familysite/internal/pkg/pgtools"
	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	titlesTable = "newmedia.drwho"
	pathsTable  = "newmedia.dr_who_master"
)

type MediaPostgresRepo struct {
	db *pgxpool.Pool
}

func New(db *pgxpool.Pool) MediaPostgresRepo {
	return MediaPostgresRepo{
		db: db,
	}
}

func (mr MediaPostgresRepo) ListTitles(ctx context.Context) ([]models.MediaTitle, error) {
	q := pgtools.Builder.Select("id", "title", "COALESCE(episodes, '')").
		From(titlesTable).
		OrderBy("id ASC")

	var titles []models.MediaTitle

	err := pgtools.Query(ctx, mr.db, q, func(rows pgx.Rows) error {
		var t models.MediaTitle

		if err := rows.Scan(&t.ID, &t.Title, &t.Episodes); err != nil {
			return fmt.Errorf("scan error: %w", err)
		}

		titles = append(titles, t)

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list titles error: %w", err)
	}

	return titles, nil
}

// SearchPaths returns at most limit paths containing title as a substring.
func (mr MediaPostgresRepo) SearchPaths(ctx context.Context, title string, limit int) ([]models.MediaPath, error) {
	q := pgtools.Builder.Select("id", "file_path").
		From(pathsTable).
		Where(squirrel.Like{"file_path": "%" + escapeLike(title) + "%"}).
		OrderBy("file_path").
		Limit(uint64(limit))

	var paths []models.MediaPath

	err := pgtools.Query(ctx, mr.db, q, func(rows pgx.Rows) error {
		var p models.MediaPath

		if err := rows.Scan(&p.ID, &p.FilePath); err != nil {
			return fmt.Errorf("scan error: %w", err)
		}

		paths = append(paths, p)

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("search paths error: %w", err)
	}

	return paths, nil
}

func (mr MediaPostgresRepo) UpdateEpisodes(ctx context.Context, id int64, episodes string) error {
	q := pgtools.Builder.Update(titlesTable).
		Set("episodes", episodes).
		Where(squirrel.Eq{"id": id})

	ct, err := pgtools.Exec(ctx, mr.db, q)
	if err != nil {
		return fmt.Errorf("update episodes error: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return mediarepo.ErrNotFound
	}

	return nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`) //nolint:gochecknoglobals

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
