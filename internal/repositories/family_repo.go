package repositories

import (
	"context"
	"time"

	"github.com/BradenHooton/family-album/internal/database"
	"github.com/BradenHooton/family-album/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type FamilyRepository struct {
	pool *pgxpool.Pool
}

func NewFamilyRepository(db *database.DB) *FamilyRepository {
	return &FamilyRepository{pool: db.Pool}
}

// GetByPhone returns the credential row registered for a normalized phone.
// The empty phone selects the default family.
func (r *FamilyRepository) GetByPhone(ctx context.Context, phone string) (*models.FamilyAccess, error) {
	query := `
		SELECT id, name, phone, viewer_pin_hash, editor_pin_hash, created_at, updated_at
		FROM family_access WHERE phone = $1
	`

	var family models.FamilyAccess
	err := r.pool.QueryRow(ctx, query, phone).Scan(
		&family.ID, &family.Name, &family.Phone,
		&family.ViewerPINHash, &family.EditorPINHash,
		&family.CreatedAt, &family.UpdatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	return &family, nil
}

// Upsert creates the family row for a phone or replaces its PIN hashes
func (r *FamilyRepository) Upsert(ctx context.Context, family *models.FamilyAccess) (*models.FamilyAccess, error) {
	query := `
		INSERT INTO family_access (id, name, phone, viewer_pin_hash, editor_pin_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
		ON CONFLICT (phone) DO UPDATE
		SET name = EXCLUDED.name,
			viewer_pin_hash = EXCLUDED.viewer_pin_hash,
			editor_pin_hash = EXCLUDED.editor_pin_hash,
			updated_at = EXCLUDED.updated_at
		RETURNING id, name, phone, viewer_pin_hash, editor_pin_hash, created_at, updated_at
	`

	var out models.FamilyAccess
	err := r.pool.QueryRow(ctx, query,
		uuid.New().String(), family.Name, family.Phone,
		family.ViewerPINHash, family.EditorPINHash, time.Now(),
	).Scan(
		&out.ID, &out.Name, &out.Phone,
		&out.ViewerPINHash, &out.EditorPINHash,
		&out.CreatedAt, &out.UpdatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	return &out, nil
}
