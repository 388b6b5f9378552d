package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/LucianoSainz/w5d1/internal/models"
	"github.com/go-sql-driver/mysql"
	"go.uber.org/zap"
)

// mysqlDuplicateEntry is the MySQL server error number for a unique key violation
const mysqlDuplicateEntry = 1062

type userRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewUserRepository creates a new MySQL backed instance of the UserRepository interface
func NewUserRepository(db *sql.DB, logger *zap.Logger) *userRepository {
	return &userRepository{
		db:     db,
		logger: logger,
	}
}

// Method Create is a UserRepository implementation for inserting a new user into a database.
//
// The users.username unique index is the only uniqueness check.
func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (username, password_hash, role)
		VALUES (?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query, user.Username, user.PasswordHash, string(user.Role))
	if err != nil {
		var mysqlErr *mysql.MySQLError
		if errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlDuplicateEntry {
			return fmt.Errorf("failed to create user: %w", models.ErrDuplicateUsername)
		}
		r.logger.Error("failed to create user", zap.Error(err))
		return fmt.Errorf("%w: failed to create user: %w", models.ErrStoreUnavailable, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		r.logger.Error("failed to get last insert id", zap.Error(err))
		return fmt.Errorf("%w: failed to get last insert id: %w", models.ErrStoreUnavailable, err)
	}
	user.ID = int(id)

	return nil
}

// Method GetByUsername is a UserRepository implementation for retrieving a user by exact username match.
func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	query := `
		SELECT id, username, password_hash, role, created_at
		FROM users
		WHERE username = ?
	`

	return r.getOne(ctx, query, username)
}

// Method GetByID is a UserRepository implementation for retrieving a user by ID.
func (r *userRepository) GetByID(ctx context.Context, id int) (*models.User, error) {
	query := `
		SELECT id, username, password_hash, role, created_at
		FROM users
		WHERE id = ?
	`

	return r.getOne(ctx, query, id)
}

func (r *userRepository) getOne(ctx context.Context, query string, arg any) (*models.User, error) {
	var user models.User
	var role string
	err := r.db.QueryRowContext(ctx, query, arg).Scan(&user.ID, &user.Username, &user.PasswordHash, &role, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrUserNotFound
		}
		r.logger.Error("failed to query user", zap.Error(err))
		return nil, fmt.Errorf("%w: failed to query user: %w", models.ErrStoreUnavailable, err)
	}

	user.Role = storedRole(r.logger, user.ID, role)
	return &user, nil
}

// storedRole maps a role column value to a known role.
// Unknown values grant nothing.
func storedRole(logger *zap.Logger, userID int, raw string) models.Role {
	role, err := models.ParseRole(raw)
	if err != nil {
		logger.Warn("user has unknown role, treating as no role", zap.Int("userId", userID), zap.String("role", raw))
		return models.RoleNone
	}
	return role
}

// Ping checks that the database is reachable
func (r *userRepository) Ping(ctx context.Context) error {
	if err := r.db.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %w", models.ErrStoreUnavailable, err)
	}
	return nil
}
