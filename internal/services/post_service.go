package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/BradenHooton/family-album/internal/models"
	pkglogger "github.com/BradenHooton/family-album/pkg/logger"
)

const MaxHashtags = 20

var hashtagPattern = regexp.MustCompile(`#([\p{L}\p{N}_]+)`)

// PostRepository defines the storage operations the post service needs
type PostRepository interface {
	GetByID(ctx context.Context, familyID, id string) (*models.Post, error)
	List(ctx context.Context, familyID string, filter models.PostFilter) ([]*models.Post, error)
	Calendar(ctx context.Context, familyID string, from, to time.Time) ([]models.CalendarDay, error)
	Hashtags(ctx context.Context, familyID string) ([]models.HashtagCount, error)
	Create(ctx context.Context, post *models.Post) (*models.Post, error)
	Update(ctx context.Context, post *models.Post) (*models.Post, error)
	UpdatePhotoSet(ctx context.Context, familyID, id string, mutate func(*models.Post) error) (*models.Post, error)
	Delete(ctx context.Context, familyID, id string) error
}

// PostInput carries the editable fields of a post
type PostInput struct {
	Type      string
	Title     string
	Content   string
	MediaURL  string
	PhotoURLs []string
	CoverURL  string
	Hashtags  []string
	Category  string
	TakenOn   *time.Time
	ChildIDs  []string
}

// PostService handles post business logic
type PostService struct {
	repo        PostRepository
	children    ChildRepository
	logger      *slog.Logger
	auditLogger *pkglogger.AuditLogger
}

// NewPostService creates a new PostService
func NewPostService(repo PostRepository, children ChildRepository, logger *slog.Logger, auditLogger *pkglogger.AuditLogger) *PostService {
	return &PostService{
		repo:        repo,
		children:    children,
		logger:      logger,
		auditLogger: auditLogger,
	}
}

func (s *PostService) GetPost(ctx context.Context, familyID, id string) (*models.Post, error) {
	post, err := s.repo.GetByID(ctx, familyID, id)
	if err != nil {
		return nil, err
	}
	return normalizePost(post), nil
}

func (s *PostService) ListPosts(ctx context.Context, familyID string, filter models.PostFilter) ([]*models.Post, error) {
	filter.Hashtag = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(filter.Hashtag), "#"))

	posts, err := s.repo.List(ctx, familyID, filter)
	if err != nil {
		return nil, err
	}
	for _, post := range posts {
		normalizePost(post)
	}
	return posts, nil
}

// Calendar returns the days of month that have posts
func (s *PostService) Calendar(ctx context.Context, familyID string, month time.Time) ([]models.CalendarDay, error) {
	from := time.Date(month.Year(), month.Month(), 1, 0, 0, 0, 0, time.UTC)
	return s.repo.Calendar(ctx, familyID, from, from.AddDate(0, 1, 0))
}

func (s *PostService) Hashtags(ctx context.Context, familyID string) ([]models.HashtagCount, error) {
	return s.repo.Hashtags(ctx, familyID)
}

func (s *PostService) CreatePost(ctx context.Context, familyID string, in PostInput) (*models.Post, error) {
	post := &models.Post{FamilyID: familyID}
	if err := s.apply(ctx, familyID, post, in); err != nil {
		return nil, err
	}

	created, err := s.repo.Create(ctx, post)
	if err != nil {
		return nil, err
	}

	s.auditLogger.LogContentChange("post_created", familyID, created.ID, map[string]string{"type": created.Type})
	return normalizePost(created), nil
}

func (s *PostService) UpdatePost(ctx context.Context, familyID, id string, in PostInput) (*models.Post, error) {
	post, err := s.repo.GetByID(ctx, familyID, id)
	if err != nil {
		return nil, err
	}

	if err := s.apply(ctx, familyID, post, in); err != nil {
		return nil, err
	}

	updated, err := s.repo.Update(ctx, post)
	if err != nil {
		return nil, err
	}

	s.auditLogger.LogContentChange("post_updated", familyID, id, nil)
	return normalizePost(updated), nil
}

func (s *PostService) DeletePost(ctx context.Context, familyID, id string) error {
	if err := s.repo.Delete(ctx, familyID, id); err != nil {
		return err
	}
	s.auditLogger.LogContentChange("post_deleted", familyID, id, nil)
	return nil
}

// ReorderPhotos stores a new order for a photo post. The cover becomes the
// first photo of the new order.
func (s *PostService) ReorderPhotos(ctx context.Context, familyID, id string, order []string) (*models.Post, error) {
	return s.mutatePhotos(ctx, familyID, id, "photos_reordered", func(set PhotoSet) (PhotoSet, error) {
		return set.Reorder(order)
	})
}

// SetCoverPhoto makes url the cover of a photo post
func (s *PostService) SetCoverPhoto(ctx context.Context, familyID, id, url string) (*models.Post, error) {
	return s.mutatePhotos(ctx, familyID, id, "cover_changed", func(set PhotoSet) (PhotoSet, error) {
		return set.SetCover(url)
	})
}

func (s *PostService) mutatePhotos(ctx context.Context, familyID, id, event string, change func(PhotoSet) (PhotoSet, error)) (*models.Post, error) {
	updated, err := s.repo.UpdatePhotoSet(ctx, familyID, id, func(post *models.Post) error {
		if post.Type != models.PostTypePhoto {
			return fmt.Errorf("%w: only photo posts have a photo set", models.ErrBadRequest)
		}

		next, err := change(DecodePhotoSet(post))
		if err != nil {
			return err
		}
		next.ApplyTo(post)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.auditLogger.LogContentChange(event, familyID, id, nil)
	return normalizePost(updated), nil
}

// apply validates in and copies it onto post
func (s *PostService) apply(ctx context.Context, familyID string, post *models.Post, in PostInput) error {
	if in.Category == "" {
		in.Category = models.CategoryDaily
	}

	post.Type = in.Type
	post.Title = strings.TrimSpace(in.Title)
	post.Content = strings.TrimSpace(in.Content)
	post.Category = in.Category
	post.TakenOn = in.TakenOn
	post.Hashtags = MergeHashtags(in.Hashtags, post.Title, post.Content)

	switch in.Type {
	case models.PostTypePhoto:
		urls := in.PhotoURLs
		if len(urls) == 0 && in.MediaURL != "" {
			urls = []string{in.MediaURL}
		}
		set := NewPhotoSet(urls, in.CoverURL)
		if len(set.URLs) == 0 {
			return fmt.Errorf("%w: photo posts need at least one photo", models.ErrBadRequest)
		}
		set.ApplyTo(post)
	case models.PostTypeVideo:
		if strings.TrimSpace(in.MediaURL) == "" {
			return fmt.Errorf("%w: video posts need a media_url", models.ErrBadRequest)
		}
		post.MediaURL = strings.TrimSpace(in.MediaURL)
		post.PhotoURLs = nil
		post.CoverURL = strings.TrimSpace(in.CoverURL)
	case models.PostTypeText:
		if post.Title == "" && post.Content == "" {
			return fmt.Errorf("%w: text posts need a title or content", models.ErrBadRequest)
		}
		post.MediaURL = ""
		post.PhotoURLs = nil
		post.CoverURL = ""
	default:
		return fmt.Errorf("%w: unknown post type %q", models.ErrBadRequest, in.Type)
	}

	childIDs, err := s.checkChildren(ctx, familyID, in.ChildIDs)
	if err != nil {
		return err
	}
	post.ChildIDs = childIDs

	return nil
}

// checkChildren de-duplicates ids and verifies each belongs to the family
func (s *PostService) checkChildren(ctx context.Context, familyID string, ids []string) ([]string, error) {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))

	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		if _, err := s.children.GetByID(ctx, familyID, id); err != nil {
			if errors.Is(err, models.ErrNotFound) {
				return nil, fmt.Errorf("%w: unknown child %s", models.ErrBadRequest, id)
			}
			return nil, err
		}
		out = append(out, id)
	}

	return out, nil
}

// normalizePost exposes the decoded photo set of photo posts whatever format
// the row was stored in
func normalizePost(post *models.Post) *models.Post {
	if post.Type != models.PostTypePhoto {
		return post
	}

	set := DecodePhotoSet(post)
	post.PhotoURLs = set.URLs
	post.CoverURL = set.Cover()
	post.MediaURL = set.Cover()
	return post
}

// MergeHashtags combines explicit tags with #tags found in texts. Tags are
// lower-cased without the leading '#', de-duplicated in first-seen order and
// capped at MaxHashtags.
func MergeHashtags(explicit []string, texts ...string) []string {
	candidates := make([]string, 0, len(explicit))
	candidates = append(candidates, explicit...)
	for _, text := range texts {
		for _, match := range hashtagPattern.FindAllStringSubmatch(text, -1) {
			candidates = append(candidates, match[1])
		}
	}

	seen := make(map[string]struct{}, len(candidates))
	tags := make([]string, 0, len(candidates))
	for _, tag := range candidates {
		tag = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(tag), "#"))
		if tag == "" {
			continue
		}
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		tags = append(tags, tag)
		if len(tags) == MaxHashtags {
			break
		}
	}

	return tags
}
