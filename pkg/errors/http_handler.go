package errors

import (
	"encoding/json"
	"net/http"
)

func WriteError(w http.ResponseWriter, err error) error {
	appErr := AsAppError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(appErr.StatusCode())

	return json.NewEncoder(w).Encode(ErrorResponse{
		Code:    appErr.Code,
		Message: appErr.Message,
		Details: appErr.Details,
	})
}

func WriteSuccess(w http.ResponseWriter, statusCode int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	// nothing to recover after WriteHeader; the caller logs
	return json.NewEncoder(w).Encode(data)
}
