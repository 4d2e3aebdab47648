package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"

	"github.com/BradenHooton/family-album/internal/auth"
	"github.com/BradenHooton/family-album/internal/models"
	"github.com/BradenHooton/family-album/internal/services"
	pkghttp "github.com/BradenHooton/family-album/pkg/http"
)

// NewTestRequest creates an HTTP request with JSON body for testing
func NewTestRequest(t *testing.T, method, url string, body interface{}) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode request body: %v", err)
		}
	}
	req := httptest.NewRequest(method, url, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// WithSessionContext adds session claims to request context for testing authenticated endpoints
func WithSessionContext(req *http.Request, familyID, role string) *http.Request {
	claims := &models.TokenClaims{
		Type:     models.TokenTypeSession,
		Role:     role,
		FamilyID: familyID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        "test-jti",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	return req.WithContext(auth.WithSession(req.Context(), claims))
}

// WithChiRouteContext adds chi URL parameters to request context for testing
func WithChiRouteContext(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for key, value := range params {
		rctx.URLParams.Add(key, value)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// AssertJSONResponse checks that response has correct status and decodes JSON body
func AssertJSONResponse(t *testing.T, w *httptest.ResponseRecorder, expectedStatus int, target interface{}) {
	assert.Equal(t, expectedStatus, w.Code, "Response status mismatch")

	contentType := w.Header().Get("Content-Type")
	assert.Equal(t, "application/json", contentType, "Content-Type should be application/json")

	if target != nil {
		err := json.Unmarshal(w.Body.Bytes(), target)
		assert.NoError(t, err, "Failed to decode response JSON")
	}
}

// AssertErrorResponse checks that response is a valid error response
func AssertErrorResponse(t *testing.T, w *httptest.ResponseRecorder, expectedStatus int, expectedError string) {
	assert.Equal(t, expectedStatus, w.Code, "Response status mismatch")

	var resp pkghttp.ErrorResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	assert.NoError(t, err, "Failed to decode error response")
	assert.Equal(t, expectedError, resp.Error, "Error code mismatch")
	assert.NotEmpty(t, resp.Message, "Error message should not be empty")
}

// MockAuthService implements AuthServiceInterface for testing
type MockAuthService struct {
	LoginFunc  func(ctx context.Context, req services.LoginRequest) (*services.LoginResult, error)
	LogoutFunc func(ctx context.Context, claims *models.TokenClaims) error
	StatusFunc func(clientID string) models.LockoutStatus
}

func (m *MockAuthService) Login(ctx context.Context, req services.LoginRequest) (*services.LoginResult, error) {
	if m.LoginFunc == nil {
		return nil, &models.InvalidPINError{AttemptsRemaining: 2}
	}
	return m.LoginFunc(ctx, req)
}

func (m *MockAuthService) Logout(ctx context.Context, claims *models.TokenClaims) error {
	if m.LogoutFunc == nil {
		return nil
	}
	return m.LogoutFunc(ctx, claims)
}

func (m *MockAuthService) Status(clientID string) models.LockoutStatus {
	if m.StatusFunc == nil {
		return models.LockoutStatus{AttemptsRemaining: 3}
	}
	return m.StatusFunc(clientID)
}

// StaticIdentifier returns the same client identifier for every request
type StaticIdentifier string

func (s StaticIdentifier) Identify(r *http.Request, phone string) string {
	return string(s)
}

// MockPostService implements PostService for testing
type MockPostService struct {
	GetPostFunc       func(ctx context.Context, familyID, id string) (*models.Post, error)
	ListPostsFunc     func(ctx context.Context, familyID string, filter models.PostFilter) ([]*models.Post, error)
	CalendarFunc      func(ctx context.Context, familyID string, month time.Time) ([]models.CalendarDay, error)
	HashtagsFunc      func(ctx context.Context, familyID string) ([]models.HashtagCount, error)
	CreatePostFunc    func(ctx context.Context, familyID string, in services.PostInput) (*models.Post, error)
	UpdatePostFunc    func(ctx context.Context, familyID, id string, in services.PostInput) (*models.Post, error)
	DeletePostFunc    func(ctx context.Context, familyID, id string) error
	ReorderPhotosFunc func(ctx context.Context, familyID, id string, order []string) (*models.Post, error)
	SetCoverPhotoFunc func(ctx context.Context, familyID, id, url string) (*models.Post, error)
}

func (m *MockPostService) GetPost(ctx context.Context, familyID, id string) (*models.Post, error) {
	if m.GetPostFunc == nil {
		return nil, models.ErrNotFound
	}
	return m.GetPostFunc(ctx, familyID, id)
}

func (m *MockPostService) ListPosts(ctx context.Context, familyID string, filter models.PostFilter) ([]*models.Post, error) {
	if m.ListPostsFunc == nil {
		return []*models.Post{}, nil
	}
	return m.ListPostsFunc(ctx, familyID, filter)
}

func (m *MockPostService) Calendar(ctx context.Context, familyID string, month time.Time) ([]models.CalendarDay, error) {
	if m.CalendarFunc == nil {
		return []models.CalendarDay{}, nil
	}
	return m.CalendarFunc(ctx, familyID, month)
}

func (m *MockPostService) Hashtags(ctx context.Context, familyID string) ([]models.HashtagCount, error) {
	if m.HashtagsFunc == nil {
		return []models.HashtagCount{}, nil
	}
	return m.HashtagsFunc(ctx, familyID)
}

func (m *MockPostService) CreatePost(ctx context.Context, familyID string, in services.PostInput) (*models.Post, error) {
	if m.CreatePostFunc == nil {
		return &models.Post{ID: "post-1", Type: in.Type, Title: in.Title}, nil
	}
	return m.CreatePostFunc(ctx, familyID, in)
}

func (m *MockPostService) UpdatePost(ctx context.Context, familyID, id string, in services.PostInput) (*models.Post, error) {
	if m.UpdatePostFunc == nil {
		return nil, models.ErrNotFound
	}
	return m.UpdatePostFunc(ctx, familyID, id, in)
}

func (m *MockPostService) DeletePost(ctx context.Context, familyID, id string) error {
	if m.DeletePostFunc == nil {
		return nil
	}
	return m.DeletePostFunc(ctx, familyID, id)
}

func (m *MockPostService) ReorderPhotos(ctx context.Context, familyID, id string, order []string) (*models.Post, error) {
	if m.ReorderPhotosFunc == nil {
		return nil, models.ErrNotFound
	}
	return m.ReorderPhotosFunc(ctx, familyID, id, order)
}

func (m *MockPostService) SetCoverPhoto(ctx context.Context, familyID, id, url string) (*models.Post, error) {
	if m.SetCoverPhotoFunc == nil {
		return nil, models.ErrNotFound
	}
	return m.SetCoverPhotoFunc(ctx, familyID, id, url)
}

// MockChildService implements ChildService for testing
type MockChildService struct {
	ListChildrenFunc        func(ctx context.Context, familyID string) ([]*models.Child, error)
	CreateChildFunc         func(ctx context.Context, familyID string, child *models.Child) (*models.Child, error)
	UpdateChildFunc         func(ctx context.Context, familyID, id string, child *models.Child) (*models.Child, error)
	DeleteChildFunc         func(ctx context.Context, familyID, id string) error
	ListSkillsFunc          func(ctx context.Context, familyID, childID string) ([]*models.Skill, error)
	CreateSkillFunc         func(ctx context.Context, familyID, childID string, skill *models.Skill) (*models.Skill, error)
	UpdateSkillFunc         func(ctx context.Context, familyID, id string, skill *models.Skill) (*models.Skill, error)
	UpdateSkillProgressFunc func(ctx context.Context, familyID, id string, progress int) (*models.Skill, error)
	DeleteSkillFunc         func(ctx context.Context, familyID, id string) error
}

func (m *MockChildService) ListChildren(ctx context.Context, familyID string) ([]*models.Child, error) {
	if m.ListChildrenFunc == nil {
		return []*models.Child{}, nil
	}
	return m.ListChildrenFunc(ctx, familyID)
}

func (m *MockChildService) CreateChild(ctx context.Context, familyID string, child *models.Child) (*models.Child, error) {
	if m.CreateChildFunc == nil {
		created := *child
		created.ID = "child-1"
		return &created, nil
	}
	return m.CreateChildFunc(ctx, familyID, child)
}

func (m *MockChildService) UpdateChild(ctx context.Context, familyID, id string, child *models.Child) (*models.Child, error) {
	if m.UpdateChildFunc == nil {
		return nil, models.ErrNotFound
	}
	return m.UpdateChildFunc(ctx, familyID, id, child)
}

func (m *MockChildService) DeleteChild(ctx context.Context, familyID, id string) error {
	if m.DeleteChildFunc == nil {
		return nil
	}
	return m.DeleteChildFunc(ctx, familyID, id)
}

func (m *MockChildService) ListSkills(ctx context.Context, familyID, childID string) ([]*models.Skill, error) {
	if m.ListSkillsFunc == nil {
		return []*models.Skill{}, nil
	}
	return m.ListSkillsFunc(ctx, familyID, childID)
}

func (m *MockChildService) CreateSkill(ctx context.Context, familyID, childID string, skill *models.Skill) (*models.Skill, error) {
	if m.CreateSkillFunc == nil {
		created := *skill
		created.ID = "skill-1"
		created.ChildID = childID
		return &created, nil
	}
	return m.CreateSkillFunc(ctx, familyID, childID, skill)
}

func (m *MockChildService) UpdateSkill(ctx context.Context, familyID, id string, skill *models.Skill) (*models.Skill, error) {
	if m.UpdateSkillFunc == nil {
		return nil, models.ErrNotFound
	}
	return m.UpdateSkillFunc(ctx, familyID, id, skill)
}

func (m *MockChildService) UpdateSkillProgress(ctx context.Context, familyID, id string, progress int) (*models.Skill, error) {
	if m.UpdateSkillProgressFunc == nil {
		return &models.Skill{ID: id, Progress: progress}, nil
	}
	return m.UpdateSkillProgressFunc(ctx, familyID, id, progress)
}

func (m *MockChildService) DeleteSkill(ctx context.Context, familyID, id string) error {
	if m.DeleteSkillFunc == nil {
		return nil
	}
	return m.DeleteSkillFunc(ctx, familyID, id)
}
