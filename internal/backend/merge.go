package backend

import (
	"encoding/json"
	"errors"
	"time"

	"tesnim/internal/domain"
)

// mergeJSON overlays the fields present in patch onto stored. Fields absent
// from patch keep their value; an explicit null clears the field.
func mergeJSON[T any](stored T, patch []byte) (T, error) {
	base, err := json.Marshal(stored)
	if err != nil {
		return stored, err
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(base, &fields); err != nil {
		return stored, err
	}
	var changes map[string]json.RawMessage
	if err := json.Unmarshal(patch, &changes); err != nil {
		return stored, errValidation("", "Request body must be a JSON object")
	}
	for k, v := range changes {
		fields[k] = v
	}

	merged, err := json.Marshal(fields)
	if err != nil {
		return stored, err
	}
	var out T
	if err := json.Unmarshal(merged, &out); err != nil {
		return stored, errValidation("", "Invalid field value: "+err.Error())
	}
	return out, nil
}

// notFoundAs maps a repository miss to a 404 naming what.
func notFoundAs(err error, what string) error {
	if errors.Is(err, domain.ErrNotFound) {
		return errNotFound(what)
	}
	return err
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// startOfWeek returns the Sunday that starts t's week.
func startOfWeek(t time.Time) time.Time {
	day := startOfDay(t)
	return day.AddDate(0, 0, -int(day.Weekday()))
}
