package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/99minutos/commerce-api/internal/core/domain"
)

const userColumns = `id, firstname, lastname, username, email, password_hash, is_admin, is_owner, created_at, updated_at`

// UserRepository implements ports.CredentialStore on a relational database.
// Obtain one from Store.Users.
type UserRepository struct {
	db      *sql.DB
	timeout time.Duration
}

// Create inserts the principal inside a transaction: either the full row is
// committed or nothing is.
func (r *UserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var created domain.User
	err := WithTx(ctx, r.db, nil, func(ctx context.Context, tx DBTX) error {
		var id int64
		err := tx.QueryRowContext(ctx,
			`INSERT INTO users (firstname, lastname, username, email, password_hash, is_admin, is_owner, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			 RETURNING id`,
			user.Firstname, user.Lastname, user.Username, user.Email, user.PasswordHash,
			user.IsAdmin, user.IsOwner, user.CreatedAt.Unix(), user.UpdatedAt.Unix(),
		).Scan(&id)
		if err != nil {
			return err
		}

		created = *user
		created.ID = strconv.FormatInt(id, 10)
		return nil
	})
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrDuplicateIdentity
		}
		return nil, fmt.Errorf("insert user: %w: %w", domain.ErrPersistence, err)
	}

	return &created, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	numericID, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return nil, domain.ErrUserNotFound
	}
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, numericID)
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username)
}

func (r *UserRepository) FindByUsernameOrEmail(ctx context.Context, username, email string) (*domain.User, error) {
	return r.findOne(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = $1 OR email = $2 ORDER BY id LIMIT 1`,
		username, email)
}

func (r *UserRepository) findOne(ctx context.Context, query string, args ...any) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var (
		u                    domain.User
		id                   int64
		createdAt, updatedAt int64
	)
	err := r.db.QueryRowContext(ctx, query, args...).Scan(
		&id, &u.Firstname, &u.Lastname, &u.Username, &u.Email, &u.PasswordHash,
		&u.IsAdmin, &u.IsOwner, &createdAt, &updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w: %w", domain.ErrPersistence, err)
	}

	u.ID = strconv.FormatInt(id, 10)
	u.CreatedAt = unixToTime(createdAt)
	u.UpdatedAt = unixToTime(updatedAt)
	return &u, nil
}
