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

const addressColumns = `id, user_id, street, city, state, zip_code, country, created_at, updated_at`

// AddressRepository implements ports.AddressRepository on a relational database.
// Obtain one from Store.Addresses.
type AddressRepository struct {
	db      *sql.DB
	timeout time.Duration
}

func (r *AddressRepository) Create(ctx context.Context, a *domain.Address) (*domain.Address, error) {
	ownerID, err := strconv.ParseInt(a.UserID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("insert address: owner %q: %w", a.UserID, domain.ErrUserNotFound)
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var created domain.Address
	err = WithTx(ctx, r.db, nil, func(ctx context.Context, tx DBTX) error {
		var id int64
		err := tx.QueryRowContext(ctx,
			`INSERT INTO addresses (user_id, street, city, state, zip_code, country, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			 RETURNING id`,
			ownerID, a.Street, a.City, a.State, a.ZipCode, a.Country,
			a.CreatedAt.Unix(), a.UpdatedAt.Unix(),
		).Scan(&id)
		if err != nil {
			return err
		}

		created = *a
		created.ID = strconv.FormatInt(id, 10)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("insert address: %w: %w", domain.ErrPersistence, err)
	}
	return &created, nil
}

func (r *AddressRepository) FindByID(ctx context.Context, id string) (*domain.Address, error) {
	numericID, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return nil, domain.ErrAddressNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	a, err := scanAddress(r.db.QueryRowContext(ctx,
		`SELECT `+addressColumns+` FROM addresses WHERE id = $1`, numericID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrAddressNotFound
		}
		return nil, fmt.Errorf("find address: %w: %w", domain.ErrPersistence, err)
	}
	return a, nil
}

// ListByOwner returns the owner's addresses ordered by id.
func (r *AddressRepository) ListByOwner(ctx context.Context, ownerID string) ([]*domain.Address, error) {
	numericOwner, err := strconv.ParseInt(ownerID, 10, 64)
	if err != nil {
		return []*domain.Address{}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+addressColumns+` FROM addresses WHERE user_id = $1 ORDER BY id`, numericOwner)
	if err != nil {
		return nil, fmt.Errorf("list addresses: %w: %w", domain.ErrPersistence, err)
	}
	defer rows.Close()

	out := make([]*domain.Address, 0)
	for rows.Next() {
		a, err := scanAddress(rows)
		if err != nil {
			return nil, fmt.Errorf("scan address: %w: %w", domain.ErrPersistence, err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list addresses: %w: %w", domain.ErrPersistence, err)
	}
	return out, nil
}

// Update rewrites the mutable attributes. user_id is part of the filter and
// never of the SET clause.
func (r *AddressRepository) Update(ctx context.Context, a *domain.Address) error {
	id, ownerID, ok := parseIDs(a.ID, a.UserID)
	if !ok {
		return domain.ErrAddressNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	return WithTx(ctx, r.db, nil, func(ctx context.Context, tx DBTX) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE addresses
			 SET street = $1, city = $2, state = $3, zip_code = $4, country = $5, updated_at = $6
			 WHERE id = $7 AND user_id = $8`,
			a.Street, a.City, a.State, a.ZipCode, a.Country, a.UpdatedAt.Unix(), id, ownerID,
		)
		if err != nil {
			return fmt.Errorf("update address: %w: %w", domain.ErrPersistence, err)
		}
		return expectOneRow(res)
	})
}

func (r *AddressRepository) Delete(ctx context.Context, id, ownerID string) error {
	numericID, numericOwner, ok := parseIDs(id, ownerID)
	if !ok {
		return domain.ErrAddressNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	return WithTx(ctx, r.db, nil, func(ctx context.Context, tx DBTX) error {
		res, err := tx.ExecContext(ctx,
			`DELETE FROM addresses WHERE id = $1 AND user_id = $2`, numericID, numericOwner)
		if err != nil {
			return fmt.Errorf("delete address: %w: %w", domain.ErrPersistence, err)
		}
		return expectOneRow(res)
	})
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAddress(row rowScanner) (*domain.Address, error) {
	var (
		a                    domain.Address
		id, userID           int64
		createdAt, updatedAt int64
	)
	if err := row.Scan(&id, &userID, &a.Street, &a.City, &a.State, &a.ZipCode, &a.Country, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	a.ID = strconv.FormatInt(id, 10)
	a.UserID = strconv.FormatInt(userID, 10)
	a.CreatedAt = unixToTime(createdAt)
	a.UpdatedAt = unixToTime(updatedAt)
	return &a, nil
}

func parseIDs(id, ownerID string) (int64, int64, bool) {
	numericID, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return 0, 0, false
	}
	numericOwner, err := strconv.ParseInt(ownerID, 10, 64)
	if err != nil {
		return 0, 0, false
	}
	return numericID, numericOwner, true
}

func expectOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w: %w", domain.ErrPersistence, err)
	}
	if n == 0 {
		return domain.ErrAddressNotFound
	}
	return nil
}
