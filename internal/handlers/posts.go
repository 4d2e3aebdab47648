package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/BradenHooton/family-album/internal/models"
	"github.com/BradenHooton/family-album/internal/services"
	pkghttp "github.com/BradenHooton/family-album/pkg/http"
)

const dateLayout = "2006-01-02"

// PostService defines the interface for post business logic
type PostService interface {
	GetPost(ctx context.Context, familyID, id string) (*models.Post, error)
	ListPosts(ctx context.Context, familyID string, filter models.PostFilter) ([]*models.Post, error)
	Calendar(ctx context.Context, familyID string, month time.Time) ([]models.CalendarDay, error)
	Hashtags(ctx context.Context, familyID string) ([]models.HashtagCount, error)
	CreatePost(ctx context.Context, familyID string, in services.PostInput) (*models.Post, error)
	UpdatePost(ctx context.Context, familyID, id string, in services.PostInput) (*models.Post, error)
	DeletePost(ctx context.Context, familyID, id string) error
	ReorderPhotos(ctx context.Context, familyID, id string, order []string) (*models.Post, error)
	SetCoverPhoto(ctx context.Context, familyID, id, url string) (*models.Post, error)
}

// PostHandler handles post-related HTTP requests
type PostHandler struct {
	service PostService
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(service PostService) *PostHandler {
	return &PostHandler{service: service}
}

// PostRequest represents the request body for creating or replacing a post
type PostRequest struct {
	Type      string   `json:"type" validate:"required,oneof=photo video text"`
	Title     string   `json:"title" validate:"max=200"`
	Content   string   `json:"content" validate:"max=10000"`
	MediaURL  string   `json:"media_url" validate:"omitempty,url"`
	PhotoURLs []string `json:"photo_urls" validate:"max=50,dive,url"`
	CoverURL  string   `json:"cover_url" validate:"omitempty,url"`
	Hashtags  []string `json:"hashtags" validate:"max=20,dive,hashtag"`
	Category  string   `json:"category" validate:"omitempty,oneof=daily milestone holiday school family other"`
	TakenOn   string   `json:"taken_on" validate:"omitempty,datetime=2006-01-02"`
	ChildIDs  []string `json:"child_ids" validate:"dive,uuid"`
}

// ReorderPhotosRequest carries the new photo order of a post
type ReorderPhotosRequest struct {
	URLs []string `json:"urls" validate:"required,min=1,dive,required"`
}

// SetCoverRequest names the photo that becomes the cover
type SetCoverRequest struct {
	URL string `json:"url" validate:"required"`
}

// ListPostsResponse represents a page of posts
type ListPostsResponse struct {
	Posts  []*models.Post `json:"posts"`
	Total  int            `json:"total"`
	Limit  int            `json:"limit"`
	Offset int            `json:"offset"`
}

func (req PostRequest) toInput() services.PostInput {
	in := services.PostInput{
		Type:      req.Type,
		Title:     req.Title,
		Content:   req.Content,
		MediaURL:  req.MediaURL,
		PhotoURLs: req.PhotoURLs,
		CoverURL:  req.CoverURL,
		Hashtags:  req.Hashtags,
		Category:  req.Category,
		ChildIDs:  req.ChildIDs,
	}
	if req.TakenOn != "" {
		// format already checked by the datetime tag
		if day, err := time.Parse(dateLayout, req.TakenOn); err == nil {
			in.TakenOn = &day
		}
	}
	return in
}

// ListPosts retrieves posts with optional filters
//
// @Summary List posts
// @Param hashtag query string false "Hashtag"
// @Param category query string false "Category"
// @Param child_id query string false "Child ID"
// @Param date query string false "Day (YYYY-MM-DD)"
// @Param limit query int false "Limit (default 50)" default(50)
// @Param offset query int false "Offset (default 0)" default(0)
// @Produce json
// @Success 200 {object} ListPostsResponse
// @Failure 400 {object} ErrorResponse
// @Router /posts [get]
func (h *PostHandler) ListPosts(w http.ResponseWriter, r *http.Request) {
	familyID, ok := sessionFamily(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	filter := models.PostFilter{
		Hashtag:  q.Get("hashtag"),
		Category: q.Get("category"),
		ChildID:  q.Get("child_id"),
		Limit:    50,
	}

	if l := q.Get("limit"); l != "" {
		if err := parseIntParam(l, &filter.Limit, 1, 200); err != nil {
			pkghttp.WriteBadRequest(w, "Invalid limit parameter")
			return
		}
	}
	if o := q.Get("offset"); o != "" {
		if err := parseIntParam(o, &filter.Offset, 0, 100000); err != nil {
			pkghttp.WriteBadRequest(w, "Invalid offset parameter")
			return
		}
	}
	if d := q.Get("date"); d != "" {
		day, err := time.Parse(dateLayout, d)
		if err != nil {
			pkghttp.WriteBadRequest(w, "Invalid date parameter, expected YYYY-MM-DD")
			return
		}
		filter.Date = &day
	}

	posts, err := h.service.ListPosts(r.Context(), familyID, filter)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, ListPostsResponse{
		Posts:  posts,
		Total:  len(posts),
		Limit:  filter.Limit,
		Offset: filter.Offset,
	})
}

// Calendar returns the days of a month that have posts
//
// @Summary Post calendar
// @Param month query string false "Month (YYYY-MM), defaults to the current month"
// @Produce json
// @Success 200 {array} models.CalendarDay
// @Router /posts/calendar [get]
func (h *PostHandler) Calendar(w http.ResponseWriter, r *http.Request) {
	familyID, ok := sessionFamily(w, r)
	if !ok {
		return
	}

	month := time.Now().UTC()
	if m := r.URL.Query().Get("month"); m != "" {
		parsed, err := time.Parse("2006-01", m)
		if err != nil {
			pkghttp.WriteBadRequest(w, "Invalid month parameter, expected YYYY-MM")
			return
		}
		month = parsed
	}

	days, err := h.service.Calendar(r.Context(), familyID, month)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, days)
}

func (h *PostHandler) Hashtags(w http.ResponseWriter, r *http.Request) {
	familyID, ok := sessionFamily(w, r)
	if !ok {
		return
	}

	tags, err := h.service.Hashtags(r.Context(), familyID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, tags)
}

func (h *PostHandler) GetPost(w http.ResponseWriter, r *http.Request) {
	familyID, ok := sessionFamily(w, r)
	if !ok {
		return
	}

	post, err := h.service.GetPost(r.Context(), familyID, chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, post)
}

// CreatePost creates a photo, video or text post
//
// @Summary Create post
// @Accept json
// @Param request body PostRequest true "Post"
// @Produce json
// @Success 201 {object} models.Post
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Router /posts [post]
func (h *PostHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	familyID, ok := sessionFamily(w, r)
	if !ok {
		return
	}

	var req PostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}
	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	post, err := h.service.CreatePost(r.Context(), familyID, req.toInput())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusCreated, post)
}

// UpdatePost replaces the editable fields of a post
func (h *PostHandler) UpdatePost(w http.ResponseWriter, r *http.Request) {
	familyID, ok := sessionFamily(w, r)
	if !ok {
		return
	}

	var req PostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}
	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	post, err := h.service.UpdatePost(r.Context(), familyID, chi.URLParam(r, "id"), req.toInput())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, post)
}

func (h *PostHandler) DeletePost(w http.ResponseWriter, r *http.Request) {
	familyID, ok := sessionFamily(w, r)
	if !ok {
		return
	}

	if err := h.service.DeletePost(r.Context(), familyID, chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ReorderPhotos stores a new photo order; the first URL becomes the cover
//
// @Summary Reorder photos
// @Accept json
// @Param request body ReorderPhotosRequest true "New order"
// @Produce json
// @Success 200 {object} models.Post
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /posts/{id}/photos/order [put]
func (h *PostHandler) ReorderPhotos(w http.ResponseWriter, r *http.Request) {
	familyID, ok := sessionFamily(w, r)
	if !ok {
		return
	}

	var req ReorderPhotosRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}
	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	post, err := h.service.ReorderPhotos(r.Context(), familyID, chi.URLParam(r, "id"), req.URLs)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, post)
}

func (h *PostHandler) SetCoverPhoto(w http.ResponseWriter, r *http.Request) {
	familyID, ok := sessionFamily(w, r)
	if !ok {
		return
	}

	var req SetCoverRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}
	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	post, err := h.service.SetCoverPhoto(r.Context(), familyID, chi.URLParam(r, "id"), req.URL)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, post)
}
