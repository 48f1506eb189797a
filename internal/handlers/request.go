package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/GregMSThompson/insights-dashboard/internal/errs"
)

const inputPrefix = "input."

// decodeJSON reads the request body into v. Empty and malformed bodies are
// validation errors.
func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return errs.NewValidationError("request body is required")
		}
		return errs.NewValidationError("malformed request body: " + err.Error())
	}
	return nil
}

// localInputs collects widget inputs passed as input.<key>=<value> query
// parameters. "true" and "false" become booleans.
func localInputs(r *http.Request) map[string]any {
	var out map[string]any
	for key, values := range r.URL.Query() {
		if !strings.HasPrefix(key, inputPrefix) || len(values) == 0 {
			continue
		}
		name := strings.TrimPrefix(key, inputPrefix)
		if name == "" {
			continue
		}
		if out == nil {
			out = make(map[string]any)
		}
		switch values[0] {
		case "true":
			out[name] = true
		case "false":
			out[name] = false
		default:
			out[name] = values[0]
		}
	}
	return out
}

func queryInt(r *http.Request, key string, fallback int) (int, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, errs.NewValidationError(key + " must be a non-negative integer")
	}
	return n, nil
}
