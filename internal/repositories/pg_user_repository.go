package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/LucianoSainz/w5d1/internal/models"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

// pgPool is the subset of *pgxpool.Pool the Postgres repository uses
type pgPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type pgUserRepository struct {
	pool   pgPool
	logger *zap.Logger
}

// NewPgUserRepository creates a new PostgreSQL backed instance of the UserRepository interface
func NewPgUserRepository(pool pgPool, logger *zap.Logger) *pgUserRepository {
	return &pgUserRepository{
		pool:   pool,
		logger: logger,
	}
}

// Create inserts a user and fills in its generated ID and creation time
func (r *pgUserRepository) Create(ctx context.Context, user *models.User) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO users (username, password_hash, role) VALUES ($1, $2, $3) RETURNING id, created_at`,
		user.Username, user.PasswordHash, string(user.Role),
	).Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return fmt.Errorf("failed to create user: %w", models.ErrDuplicateUsername)
		}
		r.logger.Error("failed to create user", zap.Error(err))
		return fmt.Errorf("%w: failed to create user: %w", models.ErrStoreUnavailable, err)
	}
	return nil
}

// GetByUsername retrieves a user by exact username match
func (r *pgUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.getOne(ctx,
		`SELECT id, username, password_hash, role, created_at FROM users WHERE username = $1`, username)
}

// GetByID retrieves a user by ID
func (r *pgUserRepository) GetByID(ctx context.Context, id int) (*models.User, error) {
	return r.getOne(ctx,
		`SELECT id, username, password_hash, role, created_at FROM users WHERE id = $1`, id)
}

func (r *pgUserRepository) getOne(ctx context.Context, query string, arg any) (*models.User, error) {
	var user models.User
	var role string
	err := r.pool.QueryRow(ctx, query, arg).Scan(&user.ID, &user.Username, &user.PasswordHash, &role, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrUserNotFound
		}
		r.logger.Error("failed to query user", zap.Error(err))
		return nil, fmt.Errorf("%w: failed to query user: %w", models.ErrStoreUnavailable, err)
	}

	user.Role = storedRole(r.logger, user.ID, role)
	return &user, nil
}

// Ping checks that the database is reachable
func (r *pgUserRepository) Ping(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, "SELECT 1"); err != nil {
		return fmt.Errorf("%w: %w", models.ErrStoreUnavailable, err)
	}
	return nil
}
