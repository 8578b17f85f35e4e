package middleware

import (
	"net/http"
	"strings"

	apperrors "clinicportal/pkg/errors"
	apphttp "clinicportal/pkg/http"
	"clinicportal/pkg/logger"
)

var allowedContentTypes = map[string]bool{
	"application/json":    true,
	"multipart/form-data": true,
}

// ContentTypeValidation rejects request bodies that are neither JSON nor multipart.
// Bodyless writes (logout, delete) pass through.
func ContentTypeValidation(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if requiresContentType(r) {
				contentType := extractContentType(r.Header.Get("Content-Type"))

				if !allowedContentTypes[contentType] {
					rejectInvalidContentType(w, log, r, contentType)
					return
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

func requiresContentType(r *http.Request) bool {
	switch r.Method {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
		return r.ContentLength != 0
	}
	return false
}

func extractContentType(header string) string {
	if header == "" {
		return ""
	}

	parts := strings.Split(header, ";")
	return strings.ToLower(strings.TrimSpace(parts[0]))
}

func rejectInvalidContentType(w http.ResponseWriter, log *logger.Logger, r *http.Request, contentType string) {
	log.Warn("Invalid Content-Type header",
		"request_id", RequestID(r),
		"content_type", contentType,
		"path", r.URL.Path,
		"method", r.Method,
	)

	apphttp.WriteError(w, apperrors.New(apperrors.CodeInvalidInput,
		"Content-Type must be application/json or multipart/form-data",
		http.StatusUnsupportedMediaType))
}
