package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/BradenHooton/family-album/internal/models"
	pkghttp "github.com/BradenHooton/family-album/pkg/http"
)

// ChildService defines the interface for children and skill tracking
type ChildService interface {
	ListChildren(ctx context.Context, familyID string) ([]*models.Child, error)
	CreateChild(ctx context.Context, familyID string, child *models.Child) (*models.Child, error)
	UpdateChild(ctx context.Context, familyID, id string, child *models.Child) (*models.Child, error)
	DeleteChild(ctx context.Context, familyID, id string) error
	ListSkills(ctx context.Context, familyID, childID string) ([]*models.Skill, error)
	CreateSkill(ctx context.Context, familyID, childID string, skill *models.Skill) (*models.Skill, error)
	UpdateSkill(ctx context.Context, familyID, id string, skill *models.Skill) (*models.Skill, error)
	UpdateSkillProgress(ctx context.Context, familyID, id string, progress int) (*models.Skill, error)
	DeleteSkill(ctx context.Context, familyID, id string) error
}

// ChildHandler handles children and skills HTTP requests
type ChildHandler struct {
	service ChildService
}

// NewChildHandler creates a new ChildHandler
func NewChildHandler(service ChildService) *ChildHandler {
	return &ChildHandler{service: service}
}

// ChildRequest represents the request body for creating or updating a child
type ChildRequest struct {
	Name      string `json:"name" validate:"required,min=1,max=100"`
	BirthDate string `json:"birth_date" validate:"omitempty,datetime=2006-01-02"`
	Color     string `json:"color" validate:"omitempty,hexcolor"`
}

// SkillRequest represents the request body for creating or updating a skill
type SkillRequest struct {
	Name     string `json:"name" validate:"required,min=1,max=100"`
	Category string `json:"category" validate:"max=50"`
	Progress int    `json:"progress" validate:"gte=0,lte=100"`
	Notes    string `json:"notes" validate:"max=2000"`
}

// SkillProgressRequest updates only the progress of a skill
type SkillProgressRequest struct {
	Progress *int `json:"progress" validate:"required,gte=0,lte=100"`
}

func (req ChildRequest) toModel() *models.Child {
	child := &models.Child{
		Name:  req.Name,
		Color: strings.ToLower(req.Color),
	}
	if req.BirthDate != "" {
		if day, err := time.Parse(dateLayout, req.BirthDate); err == nil {
			child.BirthDate = &day
		}
	}
	return child
}

func (req SkillRequest) toModel() *models.Skill {
	return &models.Skill{
		Name:     req.Name,
		Category: strings.TrimSpace(req.Category),
		Progress: req.Progress,
		Notes:    strings.TrimSpace(req.Notes),
	}
}

// decodeAndValidate reads a JSON body into dst and validates it, writing a
// 400 on failure
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return false
	}
	if err := ValidateRequest(dst); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return false
	}
	return true
}

// ListChildren retrieves every child of the family
//
// @Summary List children
// @Produce json
// @Success 200 {array} models.Child
// @Router /children [get]
func (h *ChildHandler) ListChildren(w http.ResponseWriter, r *http.Request) {
	familyID, ok := sessionFamily(w, r)
	if !ok {
		return
	}

	children, err := h.service.ListChildren(r.Context(), familyID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, children)
}

func (h *ChildHandler) CreateChild(w http.ResponseWriter, r *http.Request) {
	familyID, ok := sessionFamily(w, r)
	if !ok {
		return
	}

	var req ChildRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	child, err := h.service.CreateChild(r.Context(), familyID, req.toModel())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusCreated, child)
}

func (h *ChildHandler) UpdateChild(w http.ResponseWriter, r *http.Request) {
	familyID, ok := sessionFamily(w, r)
	if !ok {
		return
	}

	var req ChildRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	child, err := h.service.UpdateChild(r.Context(), familyID, chi.URLParam(r, "id"), req.toModel())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, child)
}

// DeleteChild removes a child together with its skills and post tags
func (h *ChildHandler) DeleteChild(w http.ResponseWriter, r *http.Request) {
	familyID, ok := sessionFamily(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteChild(r.Context(), familyID, chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *ChildHandler) ListSkills(w http.ResponseWriter, r *http.Request) {
	familyID, ok := sessionFamily(w, r)
	if !ok {
		return
	}

	skills, err := h.service.ListSkills(r.Context(), familyID, chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, skills)
}

func (h *ChildHandler) CreateSkill(w http.ResponseWriter, r *http.Request) {
	familyID, ok := sessionFamily(w, r)
	if !ok {
		return
	}

	var req SkillRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	skill, err := h.service.CreateSkill(r.Context(), familyID, chi.URLParam(r, "id"), req.toModel())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusCreated, skill)
}

func (h *ChildHandler) UpdateSkill(w http.ResponseWriter, r *http.Request) {
	familyID, ok := sessionFamily(w, r)
	if !ok {
		return
	}

	var req SkillRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	skill, err := h.service.UpdateSkill(r.Context(), familyID, chi.URLParam(r, "id"), req.toModel())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, skill)
}

// UpdateSkillProgress sets the progress of a skill, 0 to 100
//
// @Summary Update skill progress
// @Accept json
// @Param request body SkillProgressRequest true "Progress"
// @Produce json
// @Success 200 {object} models.Skill
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /skills/{id}/progress [patch]
func (h *ChildHandler) UpdateSkillProgress(w http.ResponseWriter, r *http.Request) {
	familyID, ok := sessionFamily(w, r)
	if !ok {
		return
	}

	var req SkillProgressRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	skill, err := h.service.UpdateSkillProgress(r.Context(), familyID, chi.URLParam(r, "id"), *req.Progress)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, skill)
}

func (h *ChildHandler) DeleteSkill(w http.ResponseWriter, r *http.Request) {
	familyID, ok := sessionFamily(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteSkill(r.Context(), familyID, chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
