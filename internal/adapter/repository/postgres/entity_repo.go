package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/finbooks/finbooks/internal/domain"
)

const entityColumns = `
	id, tenant_id, parent_id, name, type, currency, is_active, created_at, updated_at
`

// EntityRepository implements usecase.EntityRepository on PostgreSQL.
type EntityRepository struct {
	pool *pgxpool.Pool
}

// NewEntityRepository creates a new entity repository.
func NewEntityRepository(pool *pgxpool.Pool) *EntityRepository {
	return &EntityRepository{pool: pool}
}

// Create inserts an entity.
func (r *EntityRepository) Create(ctx context.Context, entity *domain.Entity) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO entities (`+entityColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`,
		entity.ID,
		entity.TenantID,
		entity.ParentID,
		entity.Name,
		entity.Type,
		entity.Currency,
		entity.IsActive,
		entity.CreatedAt,
		entity.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert entity: %w", err)
	}

	return nil
}

// GetByID retrieves an entity.
func (r *EntityRepository) GetByID(ctx context.Context, tenantID, id string) (*domain.Entity, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+entityColumns+`
		FROM entities
		WHERE tenant_id = $1 AND id = $2
	`, tenantID, id)

	entity, err := scanEntityRow(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrEntityNotFound
	}
	if err != nil {
		return nil, err
	}

	return entity, nil
}

// List retrieves all entities for a tenant ordered by name.
func (r *EntityRepository) List(ctx context.Context, tenantID string) ([]*domain.Entity, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+entityColumns+`
		FROM entities
		WHERE tenant_id = $1
		ORDER BY name, id
	`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("query entities: %w", err)
	}
	defer rows.Close()

	var entities []*domain.Entity
	for rows.Next() {
		entity, err := scanEntityRow(rows)
		if err != nil {
			return nil, err
		}
		entities = append(entities, entity)
	}

	return entities, rows.Err()
}

func scanEntityRow(row pgx.Row) (*domain.Entity, error) {
	var entity domain.Entity
	err := row.Scan(
		&entity.ID,
		&entity.TenantID,
		&entity.ParentID,
		&entity.Name,
		&entity.Type,
		&entity.Currency,
		&entity.IsActive,
		&entity.CreatedAt,
		&entity.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &entity, nil
}
