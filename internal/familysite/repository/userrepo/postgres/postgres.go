package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/Leopold1975/familysite/internal/familysite/domain/models"
	"github.com/Leopold1975/familysite/internal/familysite/repository/userrepo"
	"github.com/Leopold1975/familysite/internal/pkg/pgtools"
	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolation = "23505"

type UsersPostgresRepo struct {
	db *pgxpool.Pool
}

func New(db *pgxpool.Pool) UsersPostgresRepo {
	return UsersPostgresRepo{
		db: db,
	}
}

func (ur UsersPostgresRepo) CreateUser(ctx context.Context, u models.User) (err error) { //nolint:nonamedreturns
	tx, err := ur.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("cannot begin transaction error: %w", err)
	}

	defer func() {
		err = pgtools.CommitOrRollback(ctx, tx, err, "create")
	}()

	p := u.Profile

	query, args, err := pgtools.Builder.Insert("users").
		Columns("username", "password_hash", "firstname", "lastname", "address", "city", "state",
			"zipcode", "birthday", "email", "phone1", "phone2", "comment", "level").
		Values(u.Username, u.PasswordHash, p.FirstName, p.LastName, p.Address, p.City, p.State,
			p.Zipcode, p.Birthday, p.Email, p.Phone1, p.Phone2, p.Comment, u.Level).ToSql()
	if err != nil {
		return fmt.Errorf("to sql error: %w", err)
	}

	_, err = tx.Exec(ctx, query, args...)
	if err != nil {
		target := new(pgconn.PgError)
		if errors.As(err, &target) && target.Code == uniqueViolation {
			return userrepo.ErrAlreadyExists
		}

		return fmt.Errorf("exec error: %w", err)
	}

	return nil
}

func (ur UsersPostgresRepo) GetUser(ctx context.Context, username string) (models.User, error) {
	q := pgtools.Builder.Select("id", "username", "password_hash", "COALESCE(level, '')").
		From("users").
		Where(squirrel.Eq{"username": username})

	var (
		u     models.User
		found bool
	)

	err := pgtools.Query(ctx, ur.db, q, func(rows pgx.Rows) error {
		if err := rows.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Level); err != nil {
			return fmt.Errorf("scan error: %w", err)
		}

		found = true

		return nil
	})
	if err != nil {
		return models.User{}, fmt.Errorf("get user error: %w", err)
	}

	if !found {
		return models.User{}, userrepo.ErrNotFound
	}

	return u, nil
}
