//go:build integration

package repositories_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BradenHooton/family-album/internal/models"
	"github.com/BradenHooton/family-album/internal/repositories"
)

func date(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func TestFamilyRepository_GetByPhone(t *testing.T) {
	cleanupTables(t)
	ctx := context.Background()
	repo := repositories.NewFamilyRepository(testDB.DB)

	seedFamily(t, "")
	seeded := seedFamily(t, "+15551234567")

	family, err := repo.GetByPhone(ctx, "+15551234567")
	require.NoError(t, err)
	assert.Equal(t, seeded.ID, family.ID)
	assert.Equal(t, "editor-hash", family.EditorPINHash)

	def, err := repo.GetByPhone(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, "", def.Phone)

	_, err = repo.GetByPhone(ctx, "+15550000000")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestFamilyRepository_UpsertReplacesHashes(t *testing.T) {
	cleanupTables(t)
	ctx := context.Background()
	repo := repositories.NewFamilyRepository(testDB.DB)

	first := seedFamily(t, "")
	second, err := repo.Upsert(ctx, &models.FamilyAccess{
		Name: "Renamed", ViewerPINHash: "v2", EditorPINHash: "e2",
	})
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "v2", second.ViewerPINHash)
	assert.Equal(t, "Renamed", second.Name)
}

func TestPostRepository_CreateAndFilter(t *testing.T) {
	cleanupTables(t)
	ctx := context.Background()
	family := seedFamily(t, "")
	children := repositories.NewChildRepository(testDB.DB)
	posts := repositories.NewPostRepository(testDB.DB)

	child, err := children.Create(ctx, &models.Child{FamilyID: family.ID, Name: "Mia"})
	require.NoError(t, err)

	beach, err := posts.Create(ctx, &models.Post{
		FamilyID:  family.ID,
		Type:      models.PostTypePhoto,
		Title:     "Beach day",
		PhotoURLs: []string{"a.jpg", "b.jpg"},
		CoverURL:  "a.jpg",
		MediaURL:  "a.jpg",
		Hashtags:  []string{"beach", "summer"},
		Category:  models.CategoryHoliday,
		TakenOn:   date(2026, time.July, 4),
		ChildIDs:  []string{child.ID},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a.jpg", "b.jpg"}, beach.PhotoURLs)

	_, err = posts.Create(ctx, &models.Post{
		FamilyID: family.ID,
		Type:     models.PostTypeText,
		Title:    "First word",
		Hashtags: []string{"summer"},
		Category: models.CategoryMilestone,
		TakenOn:  date(2026, time.July, 10),
	})
	require.NoError(t, err)

	all, err := posts.List(ctx, family.ID, models.PostFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "First word", all[0].Title, "newest day first")

	byTag, err := posts.List(ctx, family.ID, models.PostFilter{Hashtag: "beach"})
	require.NoError(t, err)
	require.Len(t, byTag, 1)
	assert.Equal(t, beach.ID, byTag[0].ID)

	byChild, err := posts.List(ctx, family.ID, models.PostFilter{ChildID: child.ID})
	require.NoError(t, err)
	assert.Len(t, byChild, 1)

	byCategory, err := posts.List(ctx, family.ID, models.PostFilter{Category: models.CategoryMilestone})
	require.NoError(t, err)
	assert.Len(t, byCategory, 1)

	byDate, err := posts.List(ctx, family.ID, models.PostFilter{Date: date(2026, time.July, 4)})
	require.NoError(t, err)
	assert.Len(t, byDate, 1)

	days, err := posts.Calendar(ctx, family.ID, *date(2026, time.July, 1), *date(2026, time.August, 1))
	require.NoError(t, err)
	assert.Equal(t, []models.CalendarDay{{Date: "2026-07-04", Count: 1}, {Date: "2026-07-10", Count: 1}}, days)

	tags, err := posts.Hashtags(ctx, family.ID)
	require.NoError(t, err)
	assert.Equal(t, []models.HashtagCount{{Tag: "summer", Count: 2}, {Tag: "beach", Count: 1}}, tags)
}

func TestPostRepository_ScopedToFamily(t *testing.T) {
	cleanupTables(t)
	ctx := context.Background()
	mine := seedFamily(t, "")
	theirs := seedFamily(t, "+15551234567")
	posts := repositories.NewPostRepository(testDB.DB)

	post, err := posts.Create(ctx, &models.Post{
		FamilyID: mine.ID, Type: models.PostTypeText, Title: "private", Category: models.CategoryDaily,
	})
	require.NoError(t, err)

	_, err = posts.GetByID(ctx, theirs.ID, post.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)

	err = posts.Delete(ctx, theirs.ID, post.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestPostRepository_ReadsLegacyMediaURL(t *testing.T) {
	cleanupTables(t)
	ctx := context.Background()
	family := seedFamily(t, "")
	posts := repositories.NewPostRepository(testDB.DB)

	var id string
	err := testDB.Pool.QueryRow(ctx, `
		INSERT INTO posts (family_id, type, title, media_url)
		VALUES ($1, 'photo', 'old', 'x.jpg|y.jpg') RETURNING id`, family.ID).Scan(&id)
	require.NoError(t, err)

	post, err := posts.GetByID(ctx, family.ID, id)
	require.NoError(t, err)
	assert.Equal(t, "x.jpg|y.jpg", post.MediaURL)
	assert.Empty(t, post.PhotoURLs)
	assert.Equal(t, []string{}, post.Hashtags)
}

func TestPostRepository_UpdatePhotoSet(t *testing.T) {
	cleanupTables(t)
	ctx := context.Background()
	family := seedFamily(t, "")
	posts := repositories.NewPostRepository(testDB.DB)

	post, err := posts.Create(ctx, &models.Post{
		FamilyID: family.ID, Type: models.PostTypePhoto, Category: models.CategoryDaily,
		PhotoURLs: []string{"a.jpg", "b.jpg"}, CoverURL: "a.jpg", MediaURL: "a.jpg",
	})
	require.NoError(t, err)

	updated, err := posts.UpdatePhotoSet(ctx, family.ID, post.ID, func(p *models.Post) error {
		p.PhotoURLs = []string{"b.jpg", "a.jpg"}
		p.CoverURL = "b.jpg"
		p.MediaURL = "b.jpg"
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"b.jpg", "a.jpg"}, updated.PhotoURLs)
	assert.Equal(t, "b.jpg", updated.CoverURL)

	_, err = posts.UpdatePhotoSet(ctx, family.ID, post.ID, func(p *models.Post) error {
		return models.ErrInvalidPhotoOrder
	})
	assert.ErrorIs(t, err, models.ErrInvalidPhotoOrder)

	unchanged, err := posts.GetByID(ctx, family.ID, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "b.jpg", unchanged.CoverURL)
}

func TestSkillRepository_Lifecycle(t *testing.T) {
	cleanupTables(t)
	ctx := context.Background()
	family := seedFamily(t, "")
	other := seedFamily(t, "+15551234567")
	children := repositories.NewChildRepository(testDB.DB)
	skills := repositories.NewSkillRepository(testDB.DB)

	child, err := children.Create(ctx, &models.Child{FamilyID: family.ID, Name: "Leo", Color: "#ffaa00"})
	require.NoError(t, err)

	skill, err := skills.Create(ctx, family.ID, &models.Skill{ChildID: child.ID, Name: "Swimming", Progress: 10})
	require.NoError(t, err)
	assert.Equal(t, child.ID, skill.ChildID)

	_, err = skills.Create(ctx, other.ID, &models.Skill{ChildID: child.ID, Name: "Reading"})
	assert.ErrorIs(t, err, models.ErrNotFound)

	progressed, err := skills.UpdateProgress(ctx, family.ID, skill.ID, 55)
	require.NoError(t, err)
	assert.Equal(t, 55, progressed.Progress)

	_, err = skills.UpdateProgress(ctx, family.ID, skill.ID, 101)
	assert.ErrorIs(t, err, models.ErrBadRequest)

	list, err := skills.ListByChild(ctx, family.ID, child.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, children.Delete(ctx, family.ID, child.ID))
	_, err = skills.GetByID(ctx, family.ID, skill.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestTokenRevocationRepository(t *testing.T) {
	cleanupTables(t)
	ctx := context.Background()
	family := seedFamily(t, "")
	repo := repositories.NewTokenRevocationRepository(testDB.DB)

	require.NoError(t, repo.RevokeToken(ctx, "jti-live", family.ID, time.Now().Add(time.Hour), "logout"))
	require.NoError(t, repo.RevokeToken(ctx, "jti-live", family.ID, time.Now().Add(time.Hour), "logout"))
	require.NoError(t, repo.RevokeToken(ctx, "jti-old", family.ID, time.Now().Add(-time.Hour), "logout"))

	revoked, err := repo.IsTokenRevoked(ctx, "jti-live")
	require.NoError(t, err)
	assert.True(t, revoked)

	removed, err := repo.CleanupExpiredTokens(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	revoked, err = repo.IsTokenRevoked(ctx, "jti-old")
	require.NoError(t, err)
	assert.False(t, revoked)
}
