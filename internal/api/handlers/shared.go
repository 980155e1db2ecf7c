package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// parseJSON decodes the request body into the given request type.
// Unknown fields are rejected so typos surface as 400s instead of
// silently dropped fields.
func parseJSON[T any](r *http.Request) (T, error) {
	var req T
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		return req, fmt.Errorf("invalid JSON body: %w", err)
	}
	return req, nil
}

// userID extracts the authenticated user identity set by the session
// layer in front of this service.
func userID(r *http.Request) string {
	return r.Header.Get("X-User-ID")
}

// parseDateParam parses an optional YYYY-MM-DD query parameter. Returns
// the zero time when the parameter is absent.
func parseDateParam(r *http.Request, name string) (time.Time, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %s: %w", name, err)
	}
	return t, nil
}

// parseYearParam parses a required year query parameter.
func parseYearParam(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("year")
	if raw == "" {
		return 0, fmt.Errorf("year parameter is required")
	}
	var year int
	if _, err := fmt.Sscanf(raw, "%d", &year); err != nil {
		return 0, fmt.Errorf("invalid year: %s", raw)
	}
	if year < 1900 || year > 2200 {
		return 0, fmt.Errorf("invalid year: %d", year)
	}
	return year, nil
}
