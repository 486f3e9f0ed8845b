package http

import (
	"io"
	"medibook/pkg/config"
	apperrors "medibook/pkg/errors"
	"net/http"
	"strconv"
)

func ExtractLimitOffset(r *http.Request) (int, int64, error) {
	query := r.URL.Query()

	limit := 0
	if s := query.Get("limit"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil {
			return 0, 0, apperrors.InvalidInput("invalid limit parameter: " + s)
		}
		limit = v
	}

	var offset int64 = 0
	if s := query.Get("offset"); s != "" {
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return 0, 0, apperrors.InvalidInput("invalid offset parameter: " + s)
		}
		offset = v
	}

	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	return limit, offset, nil
}

// RequiredQuery returns the named query parameter or an InvalidInput error
// when it is missing.
func RequiredQuery(r *http.Request, name string) (string, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return "", apperrors.InvalidInput("missing required query parameter: " + name)
	}
	return v, nil
}

// ReadBody reads the raw request body for handlers that parse it themselves.
func ReadBody(r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, apperrors.InvalidInput("Failed to read request body")
	}
	if len(body) == 0 {
		return nil, apperrors.InvalidInput("Request body is empty")
	}
	return body, nil
}
