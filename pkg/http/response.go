package http

import (
	"encoding/json"
	"net/http"

	apperrors "clinicportal/pkg/errors"
)

type ErrorResponse struct {
	Error apperrors.Toast `json:"error"`
}

type SuccessResponse struct {
	Data any `json:"data,omitempty"`
}

type PagedResponse struct {
	Data       any `json:"data"`
	PageIndex  int `json:"pageIndex"`
	PageSize   int `json:"pageSize"`
	TotalPages int `json:"totalPages"`
}

type StatusResponse struct {
	Status string `json:"status"`
}

func WriteJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

// WriteError renders any error as a toast payload. Non-AppErrors become a generic 500.
func WriteError(w http.ResponseWriter, err error) {
	appErr := apperrors.AsAppError(err)
	if appErr.Code == apperrors.CodeInternal {
		// never leak wrapped causes
		appErr = apperrors.New(apperrors.CodeInternal, "Internal server error", http.StatusInternalServerError)
	}
	WriteJSON(w, appErr.StatusCode(), ErrorResponse{Error: appErr.Toast()})
}

func WriteSuccess(w http.ResponseWriter, data any) {
	WriteJSON(w, http.StatusOK, SuccessResponse{Data: data})
}

func WriteCreated(w http.ResponseWriter, data any) {
	WriteJSON(w, http.StatusCreated, SuccessResponse{Data: data})
}

func WriteNoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

func WritePaged(w http.ResponseWriter, data any, pageIndex, pageSize, totalPages int) {
	WriteJSON(w, http.StatusOK, PagedResponse{
		Data:       data,
		PageIndex:  pageIndex,
		PageSize:   pageSize,
		TotalPages: totalPages,
	})
}

// WritePending tells the browser session resolution is still in progress.
func WritePending(w http.ResponseWriter) {
	WriteJSON(w, http.StatusAccepted, StatusResponse{Status: "loading"})
}

func Redirect(w http.ResponseWriter, r *http.Request, location string) {
	http.Redirect(w, r, location, http.StatusFound)
}
