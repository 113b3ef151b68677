package adapthttp

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"tesnim/internal/domain"
)

const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError answers with the structured error body. Errors that are not
// API errors are logged and reported as 500.
func writeError(w http.ResponseWriter, err error) {
	if apiErr, ok := domain.AsAPIError(err); ok {
		writeJSON(w, apiErr.StatusCode, apiErr)
		return
	}
	log.Printf("[http] internal error: %v", err)
	writeJSON(w, http.StatusInternalServerError, domain.NewAPIError(http.StatusInternalServerError, domain.CodeInternal, "", "internal error"))
}

func writeOK(w http.ResponseWriter) {
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func methodNotAllowed(w http.ResponseWriter) {
	writeJSON(w, http.StatusMethodNotAllowed, map[string]any{"error": "method not allowed"})
}

func badRequest(err error) error {
	return domain.NewAPIError(http.StatusBadRequest, domain.CodeValidation, "", err.Error())
}

func parseJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return badRequest(fmt.Errorf("invalid json: %w", err))
	}
	return nil
}

// readBody returns the raw body for handlers that merge partial JSON.
func readBody(r *http.Request) ([]byte, error) {
	b, err := io.ReadAll(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	if err != nil {
		return nil, badRequest(fmt.Errorf("read body: %w", err))
	}
	return b, nil
}

func timeQuery(r *http.Request, key string) (time.Time, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return time.Time{}, domain.NewAPIError(http.StatusBadRequest, domain.CodeValidation, key, key+" must be an RFC 3339 timestamp")
	}
	return t, nil
}

func withNoCache(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store")
		next.ServeHTTP(w, r)
	})
}
