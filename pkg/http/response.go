package http

import (
	"encoding/json"
	"errors"
	"io"
	apperrors "medibook/pkg/errors"
	"net/http"
)

type SuccessResponse struct {
	Data any `json:"data,omitempty"`
}

type PaginatedResponse struct {
	Data       any   `json:"data"`
	TotalCount int64 `json:"total_count"`
	Limit      int   `json:"limit"`
	Offset     int64 `json:"offset"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

func WriteJSON(w http.ResponseWriter, statusCode int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(data)
}

// WriteError renders err with the status and code of its AppError. Errors
// that are not AppErrors become 500s.
func WriteError(w http.ResponseWriter, err error) error {
	return apperrors.WriteError(w, err)
}

func WriteSuccess(w http.ResponseWriter, data any) error {
	return WriteJSON(w, http.StatusOK, SuccessResponse{Data: data})
}

func WriteCreated(w http.ResponseWriter, data any) error {
	return WriteJSON(w, http.StatusCreated, SuccessResponse{Data: data})
}

func WriteMessage(w http.ResponseWriter, message string) error {
	return WriteJSON(w, http.StatusOK, MessageResponse{Message: message})
}

func WriteNoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

func WritePaginated(w http.ResponseWriter, data any, totalCount int64, limit int, offset int64) error {
	return WriteJSON(w, http.StatusOK, PaginatedResponse{
		Data:       data,
		TotalCount: totalCount,
		Limit:      limit,
		Offset:     offset,
	})
}

// DecodeJSON decodes the request body into dst. Unknown fields are rejected.
func DecodeJSON(r *http.Request, dst any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return apperrors.InvalidInput("Request body is empty")
		}
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return apperrors.InvalidInput("Request body too large")
		}
		return apperrors.InvalidInput("Invalid request body: " + err.Error())
	}
	return nil
}
