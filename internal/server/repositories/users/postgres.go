package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/azura/internal/common"
	"github.com/dmitrijs2005/azura/internal/dbx"
	"github.com/dmitrijs2005/azura/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

const selectUser = `SELECT id, email, password_hash, reset_hash, reset_hash_expires_at, created_at FROM users`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {

	query :=
		`INSERT INTO users (email, password_hash)
         VALUES ($1, $2)
		 RETURNING id, created_at
		 `

	err := r.db.QueryRowContext(ctx, query, user.Email, user.PasswordHash).Scan(&user.ID, &user.CreatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, common.ErrEmailTaken
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

func (r *PostgresRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, selectUser+` WHERE email = $1`, email)
}

func (r *PostgresRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	return r.findOne(ctx, selectUser+` WHERE id = $1`, id)
}

func (r *PostgresRepository) FindByResetHash(ctx context.Context, resetHash string) (*models.User, error) {
	return r.findOne(ctx, selectUser+` WHERE reset_hash = $1`, resetHash)
}

func (r *PostgresRepository) findOne(ctx context.Context, query string, arg any) (*models.User, error) {
	var (
		user      models.User
		resetHash sql.NullString
		expiresAt sql.NullTime
	)

	err := r.db.QueryRowContext(ctx, query, arg).
		Scan(&user.ID, &user.Email, &user.PasswordHash, &resetHash, &expiresAt, &user.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	if resetHash.Valid {
		user.ResetHash = &resetHash.String
	}
	if expiresAt.Valid {
		user.ResetHashExpiresAt = &expiresAt.Time
	}

	return &user, nil
}

func (r *PostgresRepository) Save(ctx context.Context, user *models.User) error {
	query :=
		`UPDATE users
		 SET email = $2, password_hash = $3, reset_hash = $4, reset_hash_expires_at = $5
		 WHERE id = $1
		 `

	var (
		resetHash sql.NullString
		expiresAt sql.NullTime
	)
	if user.ResetHash != nil {
		resetHash = sql.NullString{String: *user.ResetHash, Valid: true}
	}
	if user.ResetHashExpiresAt != nil {
		expiresAt = sql.NullTime{Time: *user.ResetHashExpiresAt, Valid: true}
	}

	res, err := r.db.ExecContext(ctx, query, user.ID, user.Email, user.PasswordHash, resetHash, expiresAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return common.ErrEmailTaken
		}
		return fmt.Errorf("db error: %w", err)
	}

	if err := dbx.RequireAffected(res); err != nil {
		if errors.Is(err, common.ErrVersionConflict) {
			return common.ErrorNotFound
		}
		return err
	}

	return nil
}

func (r *PostgresRepository) ConsumeResetHash(ctx context.Context, userID, resetHash, passwordHash string) error {
	query :=
		`UPDATE users
		 SET password_hash = $3, reset_hash = NULL, reset_hash_expires_at = NULL
		 WHERE id = $1 AND reset_hash = $2
		 `

	res, err := r.db.ExecContext(ctx, query, userID, resetHash, passwordHash)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return dbx.RequireAffected(res)
}

func (r *PostgresRepository) SetResetHash(ctx context.Context, userID, resetHash string, expiresAt time.Time) error {
	query :=
		`UPDATE users
		 SET reset_hash = $2, reset_hash_expires_at = $3
		 WHERE id = $1
		 `

	res, err := r.db.ExecContext(ctx, query, userID, resetHash, expiresAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	if err := dbx.RequireAffected(res); err != nil {
		if errors.Is(err, common.ErrVersionConflict) {
			return common.ErrorNotFound
		}
		return err
	}

	return nil
}

func (r *PostgresRepository) ClearResetHash(ctx context.Context, userID, resetHash string) error {
	query :=
		`UPDATE users
		 SET reset_hash = NULL, reset_hash_expires_at = NULL
		 WHERE id = $1 AND reset_hash = $2
		 `

	res, err := r.db.ExecContext(ctx, query, userID, resetHash)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return dbx.RequireAffected(res)
}
