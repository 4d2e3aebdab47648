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

// Skills are scoped to a family through their child
type SkillRepository struct {
	pool *pgxpool.Pool
}

func NewSkillRepository(db *database.DB) *SkillRepository {
	return &SkillRepository{pool: db.Pool}
}

const skillColumns = `s.id, s.child_id, s.name, s.category, s.progress, s.notes, s.created_at, s.updated_at`

func scanSkillRow(scanner rowScanner) (*models.Skill, error) {
	var skill models.Skill
	var category, notes *string

	err := scanner.Scan(
		&skill.ID, &skill.ChildID, &skill.Name, &category, &skill.Progress, &notes,
		&skill.CreatedAt, &skill.UpdatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	if category != nil {
		skill.Category = *category
	}
	if notes != nil {
		skill.Notes = *notes
	}

	return &skill, nil
}

func (r *SkillRepository) ListByChild(ctx context.Context, familyID, childID string) ([]*models.Skill, error) {
	query := `
		SELECT ` + skillColumns + `
		FROM skills s JOIN children c ON c.id = s.child_id
		WHERE s.child_id = $1 AND c.family_id = $2
		ORDER BY s.category NULLS LAST, s.name
	`

	rows, err := r.pool.Query(ctx, query, childID, familyID)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}
	defer rows.Close()

	skills := make([]*models.Skill, 0)
	for rows.Next() {
		skill, err := scanSkillRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan skill: %w", err)
		}
		skills = append(skills, skill)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return skills, nil
}

func (r *SkillRepository) GetByID(ctx context.Context, familyID, id string) (*models.Skill, error) {
	query := `
		SELECT ` + skillColumns + `
		FROM skills s JOIN children c ON c.id = s.child_id
		WHERE s.id = $1 AND c.family_id = $2
	`
	return scanSkillRow(r.pool.QueryRow(ctx, query, id, familyID))
}

// Create inserts a skill for a child that must belong to familyID
func (r *SkillRepository) Create(ctx context.Context, familyID string, skill *models.Skill) (*models.Skill, error) {
	query := `
		INSERT INTO skills AS s (id, child_id, name, category, progress, notes, created_at, updated_at)
		SELECT $1::uuid, c.id, $4::text, $5::text, $6::int, $7::text, $8::timestamptz, $8::timestamptz
		FROM children c WHERE c.id = $2 AND c.family_id = $3
		RETURNING ` + skillColumns

	row := r.pool.QueryRow(ctx, query,
		uuid.New().String(), skill.ChildID, familyID,
		skill.Name, nullable(skill.Category), skill.Progress, nullable(skill.Notes), time.Now(),
	)
	return scanSkillRow(row)
}

func (r *SkillRepository) Update(ctx context.Context, familyID string, skill *models.Skill) (*models.Skill, error) {
	query := `
		UPDATE skills AS s SET name = $3, category = $4, progress = $5, notes = $6, updated_at = $7
		FROM children c
		WHERE s.id = $1 AND c.id = s.child_id AND c.family_id = $2
		RETURNING ` + skillColumns

	row := r.pool.QueryRow(ctx, query,
		skill.ID, familyID, skill.Name, nullable(skill.Category), skill.Progress, nullable(skill.Notes), time.Now(),
	)
	return scanSkillRow(row)
}

func (r *SkillRepository) UpdateProgress(ctx context.Context, familyID, id string, progress int) (*models.Skill, error) {
	query := `
		UPDATE skills AS s SET progress = $3, updated_at = $4
		FROM children c
		WHERE s.id = $1 AND c.id = s.child_id AND c.family_id = $2
		RETURNING ` + skillColumns

	return scanSkillRow(r.pool.QueryRow(ctx, query, id, familyID, progress, time.Now()))
}

func (r *SkillRepository) Delete(ctx context.Context, familyID, id string) error {
	query := `
		DELETE FROM skills AS s USING children c
		WHERE s.id = $1 AND c.id = s.child_id AND c.family_id = $2
	`

	result, err := r.pool.Exec(ctx, query, id, familyID)
	if err != nil {
		return database.MapPostgresError(err)
	}
	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}

	return nil
}
