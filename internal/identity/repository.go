// Package identity provides access to organizations: the tenant records
// that anchor API key auth and own every lead.
package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned when an organization does not exist.
var ErrNotFound = errors.New("organization not found")

// Organization is one tenant.
type Organization struct {
	ID         uuid.UUID
	Name       string
	OwnerEmail string
	APIKeyHash string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Repository reads organizations from Postgres.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// GetByID returns one organization.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (Organization, error) {
	query := `
		SELECT id, name, owner_email, api_key_hash, created_at, updated_at
		FROM organizations
		WHERE id = $1`

	var org Organization
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&org.ID, &org.Name, &org.OwnerEmail, &org.APIKeyHash,
		&org.CreatedAt, &org.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Organization{}, ErrNotFound
	}
	if err != nil {
		return Organization{}, fmt.Errorf("get organization: %w", err)
	}
	return org, nil
}
