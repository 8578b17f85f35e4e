package http

import (
	"net/http"
	"strconv"

	"clinicportal/pkg/config"
	apperrors "clinicportal/pkg/errors"
)

// ExtractPage reads pageIndex and pageSize, applying the portal defaults.
func ExtractPage(r *http.Request) (int, int, error) {
	query := r.URL.Query()

	pageIndex := 1
	if s := query.Get("pageIndex"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil {
			return 0, 0, apperrors.InvalidInput("invalid pageIndex parameter: " + s)
		}
		pageIndex = v
	}

	pageSize := 0
	if s := query.Get("pageSize"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil {
			return 0, 0, apperrors.InvalidInput("invalid pageSize parameter: " + s)
		}
		pageSize = v
	}

	return config.NormalizePageIndex(pageIndex), config.NormalizePageSize(pageSize), nil
}

// ClientIP prefers X-Forwarded-For when the portal sits behind a proxy.
func ClientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		for i := 0; i < len(fwd); i++ {
			if fwd[i] == ',' {
				return fwd[:i]
			}
		}
		return fwd
	}
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	return r.RemoteAddr
}
