package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BradenHooton/family-album/internal/models"
	"github.com/BradenHooton/family-album/internal/services"
)

func newTestPostService(posts *MockPostRepository, children *MockChildRepository) *services.PostService {
	return services.NewPostService(posts, children, discardLogger(), discardAuditLogger())
}

func knownChildren(ids ...string) *MockChildRepository {
	return &MockChildRepository{
		GetByIDFunc: func(ctx context.Context, familyID, id string) (*models.Child, error) {
			for _, known := range ids {
				if id == known {
					return &models.Child{ID: id, FamilyID: familyID}, nil
				}
			}
			return nil, models.ErrNotFound
		},
	}
}

func TestMergeHashtags(t *testing.T) {
	tags := services.MergeHashtags(
		[]string{"#Beach", "summer", " ", "beach"},
		"Day at the #beach with #Grandma",
		"#summer #été",
	)
	assert.Equal(t, []string{"beach", "summer", "grandma", "été"}, tags)
}

func TestMergeHashtags_Capped(t *testing.T) {
	explicit := make([]string, 0, 30)
	for i := 0; i < 30; i++ {
		explicit = append(explicit, string(rune('a'+i%26))+string(rune('a'+i/26)))
	}

	tags := services.MergeHashtags(explicit)
	assert.Len(t, tags, services.MaxHashtags)
	assert.Equal(t, "aa", tags[0])
}

func TestPostService_CreatePhotoPost(t *testing.T) {
	var stored *models.Post
	posts := &MockPostRepository{
		CreateFunc: func(ctx context.Context, post *models.Post) (*models.Post, error) {
			stored = post
			created := *post
			created.ID = "post-1"
			return &created, nil
		},
	}
	svc := newTestPostService(posts, knownChildren("child-1"))

	post, err := svc.CreatePost(context.Background(), "family-1", services.PostInput{
		Type:      models.PostTypePhoto,
		Title:     "Park #spring",
		PhotoURLs: []string{"a.jpg", "b.jpg", "a.jpg"},
		CoverURL:  "b.jpg",
		Hashtags:  []string{"Outdoors"},
		ChildIDs:  []string{"child-1", "child-1"},
	})
	require.NoError(t, err)

	assert.Equal(t, "post-1", post.ID)
	assert.Equal(t, "family-1", stored.FamilyID)
	assert.Equal(t, []string{"b.jpg", "a.jpg"}, stored.PhotoURLs)
	assert.Equal(t, "b.jpg", stored.CoverURL)
	assert.Equal(t, "b.jpg", stored.MediaURL, "cover mirrored for single-URL readers")
	assert.Equal(t, []string{"outdoors", "spring"}, stored.Hashtags)
	assert.Equal(t, models.CategoryDaily, stored.Category)
	assert.Equal(t, []string{"child-1"}, stored.ChildIDs)
}

func TestPostService_CreateRejectsInvalidInput(t *testing.T) {
	svc := newTestPostService(&MockPostRepository{}, knownChildren("child-1"))

	tests := []struct {
		name string
		in   services.PostInput
	}{
		{"photo without photos", services.PostInput{Type: models.PostTypePhoto}},
		{"video without media", services.PostInput{Type: models.PostTypeVideo, Title: "clip"}},
		{"empty text", services.PostInput{Type: models.PostTypeText}},
		{"unknown type", services.PostInput{Type: "audio", Title: "x"}},
		{"foreign child", services.PostInput{Type: models.PostTypeText, Title: "x", ChildIDs: []string{"child-9"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreatePost(context.Background(), "family-1", tt.in)
			assert.ErrorIs(t, err, models.ErrBadRequest)
		})
	}
}

func TestPostService_GetNormalizesLegacyRows(t *testing.T) {
	posts := &MockPostRepository{
		GetByIDFunc: func(ctx context.Context, familyID, id string) (*models.Post, error) {
			return &models.Post{ID: id, Type: models.PostTypePhoto, MediaURL: `["x.jpg","y.jpg"]`}, nil
		},
	}
	svc := newTestPostService(posts, knownChildren())

	post, err := svc.GetPost(context.Background(), "family-1", "post-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"x.jpg", "y.jpg"}, post.PhotoURLs)
	assert.Equal(t, "x.jpg", post.CoverURL)
	assert.Equal(t, "x.jpg", post.MediaURL)
}

func TestPostService_ListNormalizesHashtagFilter(t *testing.T) {
	var got models.PostFilter
	posts := &MockPostRepository{
		ListFunc: func(ctx context.Context, familyID string, filter models.PostFilter) ([]*models.Post, error) {
			got = filter
			return []*models.Post{{Type: models.PostTypePhoto, MediaURL: "a.jpg|b.jpg"}}, nil
		},
	}
	svc := newTestPostService(posts, knownChildren())

	list, err := svc.ListPosts(context.Background(), "family-1", models.PostFilter{Hashtag: " #Beach "})
	require.NoError(t, err)
	assert.Equal(t, "beach", got.Hashtag)
	require.Len(t, list, 1)
	assert.Equal(t, []string{"a.jpg", "b.jpg"}, list[0].PhotoURLs)
}

func TestPostService_Calendar(t *testing.T) {
	var from, to time.Time
	posts := &MockPostRepository{
		CalendarFunc: func(ctx context.Context, familyID string, f, tt time.Time) ([]models.CalendarDay, error) {
			from, to = f, tt
			return []models.CalendarDay{{Date: "2026-12-25", Count: 3}}, nil
		},
	}
	svc := newTestPostService(posts, knownChildren())

	days, err := svc.Calendar(context.Background(), "family-1", time.Date(2026, time.December, 17, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Len(t, days, 1)
	assert.Equal(t, time.Date(2026, time.December, 1, 0, 0, 0, 0, time.UTC), from)
	assert.Equal(t, time.Date(2027, time.January, 1, 0, 0, 0, 0, time.UTC), to)
}

// photoSetRepo runs mutate against an in-memory row the way the real
// repository runs it inside a transaction
func photoSetRepo(row *models.Post) *MockPostRepository {
	return &MockPostRepository{
		UpdatePhotoSetFunc: func(ctx context.Context, familyID, id string, mutate func(*models.Post) error) (*models.Post, error) {
			working := *row
			if err := mutate(&working); err != nil {
				return nil, err
			}
			*row = working
			out := working
			return &out, nil
		},
	}
}

func TestPostService_ReorderPhotos(t *testing.T) {
	row := &models.Post{ID: "post-1", Type: models.PostTypePhoto, MediaURL: "a.jpg|b.jpg|c.jpg"}
	svc := newTestPostService(photoSetRepo(row), knownChildren())

	post, err := svc.ReorderPhotos(context.Background(), "family-1", "post-1", []string{"c.jpg", "a.jpg", "b.jpg"})
	require.NoError(t, err)
	assert.Equal(t, []string{"c.jpg", "a.jpg", "b.jpg"}, post.PhotoURLs)
	assert.Equal(t, "c.jpg", row.CoverURL)
	assert.Equal(t, "c.jpg", row.MediaURL, "legacy row rewritten natively")

	_, err = svc.ReorderPhotos(context.Background(), "family-1", "post-1", []string{"a.jpg"})
	assert.ErrorIs(t, err, models.ErrInvalidPhotoOrder)
	assert.Equal(t, []string{"c.jpg", "a.jpg", "b.jpg"}, row.PhotoURLs, "failed reorder leaves the row untouched")
}

func TestPostService_SetCoverPhoto(t *testing.T) {
	row := &models.Post{ID: "post-1", Type: models.PostTypePhoto, PhotoURLs: []string{"a.jpg", "b.jpg"}}
	svc := newTestPostService(photoSetRepo(row), knownChildren())

	post, err := svc.SetCoverPhoto(context.Background(), "family-1", "post-1", "b.jpg")
	require.NoError(t, err)
	assert.Equal(t, "b.jpg", post.CoverURL)
	assert.Equal(t, []string{"b.jpg", "a.jpg"}, post.PhotoURLs)

	_, err = svc.SetCoverPhoto(context.Background(), "family-1", "post-1", "z.jpg")
	assert.ErrorIs(t, err, models.ErrPhotoNotInSet)
}

func TestPostService_PhotoOpsRejectNonPhotoPosts(t *testing.T) {
	row := &models.Post{ID: "post-1", Type: models.PostTypeVideo, MediaURL: "clip.mp4"}
	svc := newTestPostService(photoSetRepo(row), knownChildren())

	_, err := svc.SetCoverPhoto(context.Background(), "family-1", "post-1", "clip.mp4")
	assert.ErrorIs(t, err, models.ErrBadRequest)
}
