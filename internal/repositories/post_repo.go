package repositories

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/BradenHooton/family-album/internal/database"
	"github.com/BradenHooton/family-album/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/lib/pq"
)

const (
	DefaultPostLimit = 50
	MaxPostLimit     = 200
)

const postColumns = `id, family_id, type, title, content, media_url, photo_urls, cover_url,
	hashtags, category, taken_on, child_ids, created_at, updated_at`

// postDay is the calendar day a post belongs to
const postDay = `COALESCE(taken_on, (created_at AT TIME ZONE 'UTC')::date)`

type PostRepository struct {
	db *database.DB
}

func NewPostRepository(db *database.DB) *PostRepository {
	return &PostRepository{db: db}
}

// rowScanner interface for scanning rows (supports both single row and multiple rows)
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanPostRow handles nullable and array columns
func scanPostRow(scanner rowScanner) (*models.Post, error) {
	var post models.Post
	var mediaURL, coverURL *string
	var photoURLs, hashtags, childIDs []string

	err := scanner.Scan(
		&post.ID, &post.FamilyID, &post.Type, &post.Title, &post.Content,
		&mediaURL, pq.Array(&photoURLs), &coverURL,
		pq.Array(&hashtags), &post.Category, &post.TakenOn, pq.Array(&childIDs),
		&post.CreatedAt, &post.UpdatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	if mediaURL != nil {
		post.MediaURL = *mediaURL
	}
	if coverURL != nil {
		post.CoverURL = *coverURL
	}
	post.PhotoURLs = photoURLs
	post.Hashtags = nonNil(hashtags)
	post.ChildIDs = nonNil(childIDs)

	return &post, nil
}

func scanPostRows(rows pgx.Rows) ([]*models.Post, error) {
	defer rows.Close()

	posts := make([]*models.Post, 0)
	for rows.Next() {
		post, err := scanPostRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan post: %w", err)
		}
		posts = append(posts, post)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return posts, nil
}

func (r *PostRepository) GetByID(ctx context.Context, familyID, id string) (*models.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE id = $1 AND family_id = $2`
	return scanPostRow(r.db.Pool.QueryRow(ctx, query, id, familyID))
}

// List returns posts newest day first, narrowed by filter
func (r *PostRepository) List(ctx context.Context, familyID string, filter models.PostFilter) ([]*models.Post, error) {
	conds := []string{"family_id = $1"}
	args := []interface{}{familyID}

	if filter.Hashtag != "" {
		args = append(args, filter.Hashtag)
		conds = append(conds, fmt.Sprintf("$%d = ANY(hashtags)", len(args)))
	}
	if filter.Category != "" {
		args = append(args, filter.Category)
		conds = append(conds, fmt.Sprintf("category = $%d", len(args)))
	}
	if filter.ChildID != "" {
		args = append(args, filter.ChildID)
		conds = append(conds, fmt.Sprintf("$%d = ANY(child_ids)", len(args)))
	}
	if filter.Date != nil {
		args = append(args, *filter.Date)
		conds = append(conds, fmt.Sprintf("%s = $%d::date", postDay, len(args)))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = DefaultPostLimit
	}
	if limit > MaxPostLimit {
		limit = MaxPostLimit
	}
	offset := max(filter.Offset, 0)

	args = append(args, limit, offset)
	query := fmt.Sprintf(`SELECT %s FROM posts WHERE %s
		ORDER BY %s DESC, created_at DESC
		LIMIT $%d OFFSET $%d`,
		postColumns, strings.Join(conds, " AND "), postDay, len(args)-1, len(args))

	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	return scanPostRows(rows)
}

// Calendar returns the days in [from, to) that have posts, with their counts
func (r *PostRepository) Calendar(ctx context.Context, familyID string, from, to time.Time) ([]models.CalendarDay, error) {
	query := `
		SELECT to_char(` + postDay + `, 'YYYY-MM-DD') AS day, COUNT(*)
		FROM posts
		WHERE family_id = $1 AND ` + postDay + ` >= $2::date AND ` + postDay + ` < $3::date
		GROUP BY day
		ORDER BY day
	`

	rows, err := r.db.Pool.Query(ctx, query, familyID, from, to)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}
	defer rows.Close()

	days := make([]models.CalendarDay, 0)
	for rows.Next() {
		var day models.CalendarDay
		if err := rows.Scan(&day.Date, &day.Count); err != nil {
			return nil, fmt.Errorf("failed to scan calendar day: %w", err)
		}
		days = append(days, day)
	}

	return days, rows.Err()
}

// Hashtags returns every hashtag in use, most used first
func (r *PostRepository) Hashtags(ctx context.Context, familyID string) ([]models.HashtagCount, error) {
	query := `
		SELECT tag, COUNT(*) AS uses
		FROM posts, unnest(hashtags) AS tag
		WHERE family_id = $1
		GROUP BY tag
		ORDER BY uses DESC, tag
	`

	rows, err := r.db.Pool.Query(ctx, query, familyID)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}
	defer rows.Close()

	tags := make([]models.HashtagCount, 0)
	for rows.Next() {
		var tag models.HashtagCount
		if err := rows.Scan(&tag.Tag, &tag.Count); err != nil {
			return nil, fmt.Errorf("failed to scan hashtag: %w", err)
		}
		tags = append(tags, tag)
	}

	return tags, rows.Err()
}

func (r *PostRepository) Create(ctx context.Context, post *models.Post) (*models.Post, error) {
	query := `
		INSERT INTO posts (id, family_id, type, title, content, media_url, photo_urls, cover_url,
			hashtags, category, taken_on, child_ids, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $13)
		RETURNING ` + postColumns

	row := r.db.Pool.QueryRow(ctx, query,
		uuid.New().String(), post.FamilyID, post.Type, post.Title, post.Content,
		nullable(post.MediaURL), pq.Array(post.PhotoURLs), nullable(post.CoverURL),
		pq.Array(nonNil(post.Hashtags)), post.Category, post.TakenOn, pq.Array(nonNil(post.ChildIDs)),
		time.Now(),
	)
	return scanPostRow(row)
}

func (r *PostRepository) Update(ctx context.Context, post *models.Post) (*models.Post, error) {
	query := `
		UPDATE posts
		SET type = $3, title = $4, content = $5, media_url = $6, photo_urls = $7, cover_url = $8,
			hashtags = $9, category = $10, taken_on = $11, child_ids = $12, updated_at = $13
		WHERE id = $1 AND family_id = $2
		RETURNING ` + postColumns

	row := r.db.Pool.QueryRow(ctx, query,
		post.ID, post.FamilyID, post.Type, post.Title, post.Content,
		nullable(post.MediaURL), pq.Array(post.PhotoURLs), nullable(post.CoverURL),
		pq.Array(nonNil(post.Hashtags)), post.Category, post.TakenOn, pq.Array(nonNil(post.ChildIDs)),
		time.Now(),
	)
	return scanPostRow(row)
}

// UpdatePhotoSet locks the post row, lets mutate rewrite its photo columns
// and stores the result in the same transaction
func (r *PostRepository) UpdatePhotoSet(ctx context.Context, familyID, id string, mutate func(*models.Post) error) (*models.Post, error) {
	var updated *models.Post

	err := r.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		query := `SELECT ` + postColumns + ` FROM posts WHERE id = $1 AND family_id = $2 FOR UPDATE`
		post, err := scanPostRow(tx.QueryRow(ctx, query, id, familyID))
		if err != nil {
			return err
		}

		if err := mutate(post); err != nil {
			return err
		}

		update := `
			UPDATE posts SET media_url = $3, photo_urls = $4, cover_url = $5, updated_at = $6
			WHERE id = $1 AND family_id = $2
			RETURNING ` + postColumns
		updated, err = scanPostRow(tx.QueryRow(ctx, update,
			id, familyID, nullable(post.MediaURL), pq.Array(post.PhotoURLs), nullable(post.CoverURL), time.Now(),
		))
		return err
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

func (r *PostRepository) Delete(ctx context.Context, familyID, id string) error {
	result, err := r.db.Pool.Exec(ctx, `DELETE FROM posts WHERE id = $1 AND family_id = $2`, id, familyID)
	if err != nil {
		return database.MapPostgresError(err)
	}

	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}

	return nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
