package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/BradenHooton/family-album/internal/database"
	"github.com/BradenHooton/family-album/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ChildRepository struct {
	pool *pgxpool.Pool
}

func NewChildRepository(db *database.DB) *ChildRepository {
	return &ChildRepository{pool: db.Pool}
}

func scanChildRow(scanner rowScanner) (*models.Child, error) {
	var child models.Child
	var color *string

	err := scanner.Scan(
		&child.ID, &child.FamilyID, &child.Name, &child.BirthDate, &color,
		&child.CreatedAt, &child.UpdatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	if color != nil {
		child.Color = *color
	}

	return &child, nil
}

func (r *ChildRepository) List(ctx context.Context, familyID string) ([]*models.Child, error) {
	query := `
		SELECT id, family_id, name, birth_date, color, created_at, updated_at
		FROM children WHERE family_id = $1
		ORDER BY birth_date NULLS LAST, name
	`

	rows, err := r.pool.Query(ctx, query, familyID)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}
	defer rows.Close()

	children := make([]*models.Child, 0)
	for rows.Next() {
		child, err := scanChildRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan child: %w", err)
		}
		children = append(children, child)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return children, nil
}

func (r *ChildRepository) GetByID(ctx context.Context, familyID, id string) (*models.Child, error) {
	query := `
		SELECT id, family_id, name, birth_date, color, created_at, updated_at
		FROM children WHERE id = $1 AND family_id = $2
	`
	return scanChildRow(r.pool.QueryRow(ctx, query, id, familyID))
}

func (r *ChildRepository) Create(ctx context.Context, child *models.Child) (*models.Child, error) {
	query := `
		INSERT INTO children (id, family_id, name, birth_date, color, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
		RETURNING id, family_id, name, birth_date, color, created_at, updated_at
	`

	row := r.pool.QueryRow(ctx, query,
		uuid.New().String(), child.FamilyID, child.Name, child.BirthDate, nullable(child.Color), time.Now(),
	)
	return scanChildRow(row)
}

func (r *ChildRepository) Update(ctx context.Context, child *models.Child) (*models.Child, error) {
	query := `
		UPDATE children SET name = $3, birth_date = $4, color = $5, updated_at = $6
		WHERE id = $1 AND family_id = $2
		RETURNING id, family_id, name, birth_date, color, created_at, updated_at
	`

	row := r.pool.QueryRow(ctx, query,
		child.ID, child.FamilyID, child.Name, child.BirthDate, nullable(child.Color), time.Now(),
	)
	return scanChildRow(row)
}

// Delete removes a child and its skills, and detaches it from every post
func (r *ChildRepository) Delete(ctx context.Context, familyID, id string) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM children WHERE id = $1 AND family_id = $2`, id, familyID)
	if err != nil {
		return database.MapPostgresError(err)
	}
	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}

	_, err = r.pool.Exec(ctx,
		`UPDATE posts SET child_ids = array_remove(child_ids, $1) WHERE family_id = $2 AND $1 = ANY(child_ids)`,
		id, familyID)
	return database.MapPostgresError(err)
}
