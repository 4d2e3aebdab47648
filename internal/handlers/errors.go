package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/BradenHooton/family-album/internal/auth"
	"github.com/BradenHooton/family-album/internal/models"
	pkghttp "github.com/BradenHooton/family-album/pkg/http"
)

// writeServiceError maps service errors onto the JSON error envelope
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrNotFound):
		pkghttp.WriteNotFound(w, "Resource not found")
	case errors.Is(err, models.ErrInvalidPhotoOrder),
		errors.Is(err, models.ErrPhotoNotInSet):
		pkghttp.WriteBadRequest(w, err.Error())
	case errors.Is(err, models.ErrBadRequest):
		pkghttp.WriteBadRequest(w, badRequestMessage(err))
	case errors.Is(err, models.ErrConflict):
		pkghttp.WriteConflict(w, "Resource already exists")
	case errors.Is(err, models.ErrForbidden):
		pkghttp.WriteForbidden(w, "Forbidden")
	default:
		pkghttp.WriteInternalError(w, "Internal server error")
	}
}

// badRequestMessage drops the sentinel prefix from a wrapped ErrBadRequest
func badRequestMessage(err error) string {
	msg := strings.TrimPrefix(err.Error(), models.ErrBadRequest.Error()+": ")
	if msg == models.ErrBadRequest.Error() {
		return "Invalid request"
	}
	return msg
}

// sessionFamily returns the family of the authenticated session, writing a
// 401 when there is none
func sessionFamily(w http.ResponseWriter, r *http.Request) (string, bool) {
	claims := auth.GetSessionFromContext(r)
	if claims == nil || claims.FamilyID == "" {
		pkghttp.WriteUnauthorized(w, "Authentication required")
		return "", false
	}
	return claims.FamilyID, true
}
