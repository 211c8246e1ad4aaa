package http

import (
	"encoding/json"
	"net/http"
	"time"

	apperrors "slotbook/pkg/errors"
)

// DecodeJSON decodes the request body into dst, rejecting unknown fields.
func DecodeJSON(r *http.Request, dst any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		return apperrors.InvalidInput("malformed request body: " + err.Error())
	}
	return nil
}

// ExtractDate parses the required "date" query parameter as YYYY-MM-DD.
func ExtractDate(r *http.Request) (time.Time, error) {
	raw := r.URL.Query().Get("date")
	if raw == "" {
		return time.Time{}, apperrors.InvalidInput("date parameter is required")
	}
	date, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, apperrors.InvalidInput("invalid date parameter: " + raw + ", want YYYY-MM-DD")
	}
	return date, nil
}
