package handlers_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BradenHooton/family-album/internal/handlers"
	"github.com/BradenHooton/family-album/internal/models"
)

func TestCreateChild(t *testing.T) {
	var gotFamily string
	var got *models.Child
	mockService := &handlers.MockChildService{
		CreateChildFunc: func(ctx context.Context, familyID string, child *models.Child) (*models.Child, error) {
			gotFamily, got = familyID, child
			child.ID = "child-1"
			return child, nil
		},
	}
	handler := handlers.NewChildHandler(mockService)

	req := handlers.NewTestRequest(t, "POST", "/children", map[string]string{
		"name":       "Mia",
		"birth_date": "2020-05-17",
		"color":      "#FFAA00",
	})
	req = handlers.WithSessionContext(req, "family-1", models.RoleEditor)
	w := httptest.NewRecorder()
	handler.CreateChild(w, req)

	var child models.Child
	handlers.AssertJSONResponse(t, w, 201, &child)
	assert.Equal(t, "child-1", child.ID)
	assert.Equal(t, "family-1", gotFamily)
	assert.Equal(t, "#ffaa00", got.Color)
	require.NotNil(t, got.BirthDate)
	assert.Equal(t, 2020, got.BirthDate.Year())
}

func TestCreateChild_Validation(t *testing.T) {
	handler := handlers.NewChildHandler(&handlers.MockChildService{})

	for _, body := range []map[string]string{
		{"name": ""},
		{"name": "Mia", "color": "orange"},
		{"name": "Mia", "birth_date": "17/05/2020"},
	} {
		req := handlers.NewTestRequest(t, "POST", "/children", body)
		req = handlers.WithSessionContext(req, "family-1", models.RoleEditor)
		w := httptest.NewRecorder()
		handler.CreateChild(w, req)

		handlers.AssertErrorResponse(t, w, 400, "bad_request")
	}
}

func TestListSkills_UnknownChild(t *testing.T) {
	mockService := &handlers.MockChildService{
		ListSkillsFunc: func(ctx context.Context, familyID, childID string) ([]*models.Skill, error) {
			return nil, models.ErrNotFound
		},
	}
	handler := handlers.NewChildHandler(mockService)

	req := httptest.NewRequest("GET", "/children/child-9/skills", nil)
	req = handlers.WithSessionContext(req, "family-1", models.RoleViewer)
	req = handlers.WithChiRouteContext(req, map[string]string{"id": "child-9"})
	w := httptest.NewRecorder()
	handler.ListSkills(w, req)

	handlers.AssertErrorResponse(t, w, 404, "not_found")
}

func TestCreateSkill(t *testing.T) {
	handler := handlers.NewChildHandler(&handlers.MockChildService{})

	req := handlers.NewTestRequest(t, "POST", "/children/child-1/skills", map[string]interface{}{
		"name":     "Swimming",
		"category": "sport",
		"progress": 40,
	})
	req = handlers.WithSessionContext(req, "family-1", models.RoleEditor)
	req = handlers.WithChiRouteContext(req, map[string]string{"id": "child-1"})
	w := httptest.NewRecorder()
	handler.CreateSkill(w, req)

	var skill models.Skill
	handlers.AssertJSONResponse(t, w, 201, &skill)
	assert.Equal(t, "child-1", skill.ChildID)
	assert.Equal(t, 40, skill.Progress)
}

func TestUpdateSkillProgress(t *testing.T) {
	handler := handlers.NewChildHandler(&handlers.MockChildService{})

	tests := []struct {
		name   string
		body   map[string]interface{}
		status int
	}{
		{"in range", map[string]interface{}{"progress": 75}, http.StatusOK},
		{"zero is allowed", map[string]interface{}{"progress": 0}, http.StatusOK},
		{"missing", map[string]interface{}{}, http.StatusBadRequest},
		{"above 100", map[string]interface{}{"progress": 101}, http.StatusBadRequest},
		{"negative", map[string]interface{}{"progress": -5}, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := handlers.NewTestRequest(t, "PATCH", "/skills/skill-1/progress", tt.body)
			req = handlers.WithSessionContext(req, "family-1", models.RoleEditor)
			req = handlers.WithChiRouteContext(req, map[string]string{"id": "skill-1"})
			w := httptest.NewRecorder()
			handler.UpdateSkillProgress(w, req)

			assert.Equal(t, tt.status, w.Code)
		})
	}
}

func TestDeleteChild(t *testing.T) {
	var deleted string
	mockService := &handlers.MockChildService{
		DeleteChildFunc: func(ctx context.Context, familyID, id string) error {
			deleted = id
			return nil
		},
	}
	handler := handlers.NewChildHandler(mockService)

	req := httptest.NewRequest("DELETE", "/children/child-1", nil)
	req = handlers.WithSessionContext(req, "family-1", models.RoleEditor)
	req = handlers.WithChiRouteContext(req, map[string]string{"id": "child-1"})
	w := httptest.NewRecorder()
	handler.DeleteChild(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "child-1", deleted)
}
