package services_test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/BradenHooton/family-album/internal/models"
	"github.com/BradenHooton/family-album/internal/services"
	pkglogger "github.com/BradenHooton/family-album/pkg/logger"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func discardAuditLogger() *pkglogger.AuditLogger {
	return pkglogger.NewAuditLogger(discardLogger())
}

// MockFamilyRepository implements services.FamilyRepository for testing
type MockFamilyRepository struct {
	GetByPhoneFunc func(ctx context.Context, phone string) (*models.FamilyAccess, error)
	UpsertFunc     func(ctx context.Context, family *models.FamilyAccess) (*models.FamilyAccess, error)
}

func (m *MockFamilyRepository) GetByPhone(ctx context.Context, phone string) (*models.FamilyAccess, error) {
	if m.GetByPhoneFunc != nil {
		return m.GetByPhoneFunc(ctx, phone)
	}
	return nil, models.ErrNotFound
}

func (m *MockFamilyRepository) Upsert(ctx context.Context, family *models.FamilyAccess) (*models.FamilyAccess, error) {
	if m.UpsertFunc != nil {
		return m.UpsertFunc(ctx, family)
	}
	return family, nil
}

// MockTokenRevocationRepository implements services.TokenRevocationRepository for testing
type MockTokenRevocationRepository struct {
	RevokeTokenFunc func(ctx context.Context, jti, familyID string, expiresAt time.Time, reason string) error
}

func (m *MockTokenRevocationRepository) RevokeToken(ctx context.Context, jti, familyID string, expiresAt time.Time, reason string) error {
	if m.RevokeTokenFunc != nil {
		return m.RevokeTokenFunc(ctx, jti, familyID, expiresAt, reason)
	}
	return nil
}

// MockAlertNotifier records every alert it is asked to send
type MockAlertNotifier struct {
	mu     sync.Mutex
	Alerts []services.SecurityAlert
	Err    error
}

func (m *MockAlertNotifier) NotifyLockout(ctx context.Context, alert services.SecurityAlert) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Alerts = append(m.Alerts, alert)
	return m.Err
}

// MockPostRepository implements services.PostRepository for testing
type MockPostRepository struct {
	GetByIDFunc        func(ctx context.Context, familyID, id string) (*models.Post, error)
	ListFunc           func(ctx context.Context, familyID string, filter models.PostFilter) ([]*models.Post, error)
	CalendarFunc       func(ctx context.Context, familyID string, from, to time.Time) ([]models.CalendarDay, error)
	HashtagsFunc       func(ctx context.Context, familyID string) ([]models.HashtagCount, error)
	CreateFunc         func(ctx context.Context, post *models.Post) (*models.Post, error)
	UpdateFunc         func(ctx context.Context, post *models.Post) (*models.Post, error)
	UpdatePhotoSetFunc func(ctx context.Context, familyID, id string, mutate func(*models.Post) error) (*models.Post, error)
	DeleteFunc         func(ctx context.Context, familyID, id string) error
}

func (m *MockPostRepository) GetByID(ctx context.Context, familyID, id string) (*models.Post, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, familyID, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockPostRepository) List(ctx context.Context, familyID string, filter models.PostFilter) ([]*models.Post, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, familyID, filter)
	}
	return []*models.Post{}, nil
}

func (m *MockPostRepository) Calendar(ctx context.Context, familyID string, from, to time.Time) ([]models.CalendarDay, error) {
	if m.CalendarFunc != nil {
		return m.CalendarFunc(ctx, familyID, from, to)
	}
	return []models.CalendarDay{}, nil
}

func (m *MockPostRepository) Hashtags(ctx context.Context, familyID string) ([]models.HashtagCount, error) {
	if m.HashtagsFunc != nil {
		return m.HashtagsFunc(ctx, familyID)
	}
	return []models.HashtagCount{}, nil
}

func (m *MockPostRepository) Create(ctx context.Context, post *models.Post) (*models.Post, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, post)
	}
	created := *post
	created.ID = "post-1"
	return &created, nil
}

func (m *MockPostRepository) Update(ctx context.Context, post *models.Post) (*models.Post, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, post)
	}
	updated := *post
	return &updated, nil
}

func (m *MockPostRepository) UpdatePhotoSet(ctx context.Context, familyID, id string, mutate func(*models.Post) error) (*models.Post, error) {
	if m.UpdatePhotoSetFunc != nil {
		return m.UpdatePhotoSetFunc(ctx, familyID, id, mutate)
	}
	return nil, models.ErrNotFound
}

func (m *MockPostRepository) Delete(ctx context.Context, familyID, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, familyID, id)
	}
	return nil
}

// MockChildRepository implements services.ChildRepository for testing
type MockChildRepository struct {
	ListFunc    func(ctx context.Context, familyID string) ([]*models.Child, error)
	GetByIDFunc func(ctx context.Context, familyID, id string) (*models.Child, error)
	CreateFunc  func(ctx context.Context, child *models.Child) (*models.Child, error)
	UpdateFunc  func(ctx context.Context, child *models.Child) (*models.Child, error)
	DeleteFunc  func(ctx context.Context, familyID, id string) error
}

func (m *MockChildRepository) List(ctx context.Context, familyID string) ([]*models.Child, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, familyID)
	}
	return []*models.Child{}, nil
}

func (m *MockChildRepository) GetByID(ctx context.Context, familyID, id string) (*models.Child, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, familyID, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockChildRepository) Create(ctx context.Context, child *models.Child) (*models.Child, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, child)
	}
	created := *child
	created.ID = "child-1"
	return &created, nil
}

func (m *MockChildRepository) Update(ctx context.Context, child *models.Child) (*models.Child, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, child)
	}
	updated := *child
	return &updated, nil
}

func (m *MockChildRepository) Delete(ctx context.Context, familyID, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, familyID, id)
	}
	return nil
}

// MockSkillRepository implements services.SkillRepository for testing
type MockSkillRepository struct {
	ListByChildFunc    func(ctx context.Context, familyID, childID string) ([]*models.Skill, error)
	GetByIDFunc        func(ctx context.Context, familyID, id string) (*models.Skill, error)
	CreateFunc         func(ctx context.Context, familyID string, skill *models.Skill) (*models.Skill, error)
	UpdateFunc         func(ctx context.Context, familyID string, skill *models.Skill) (*models.Skill, error)
	UpdateProgressFunc func(ctx context.Context, familyID, id string, progress int) (*models.Skill, error)
	DeleteFunc         func(ctx context.Context, familyID, id string) error
}

func (m *MockSkillRepository) ListByChild(ctx context.Context, familyID, childID string) ([]*models.Skill, error) {
	if m.ListByChildFunc != nil {
		return m.ListByChildFunc(ctx, familyID, childID)
	}
	return []*models.Skill{}, nil
}

func (m *MockSkillRepository) GetByID(ctx context.Context, familyID, id string) (*models.Skill, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, familyID, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockSkillRepository) Create(ctx context.Context, familyID string, skill *models.Skill) (*models.Skill, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, familyID, skill)
	}
	created := *skill
	created.ID = "skill-1"
	return &created, nil
}

func (m *MockSkillRepository) Update(ctx context.Context, familyID string, skill *models.Skill) (*models.Skill, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, familyID, skill)
	}
	updated := *skill
	return &updated, nil
}

func (m *MockSkillRepository) UpdateProgress(ctx context.Context, familyID, id string, progress int) (*models.Skill, error) {
	if m.UpdateProgressFunc != nil {
		return m.UpdateProgressFunc(ctx, familyID, id, progress)
	}
	return &models.Skill{ID: id, Progress: progress}, nil
}

func (m *MockSkillRepository) Delete(ctx context.Context, familyID, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, familyID, id)
	}
	return nil
}
