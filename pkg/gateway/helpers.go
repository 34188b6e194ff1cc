package gateway

import (
	"encoding/json"
	"net/http"

	"github.com/CreonHQ/creon/pkg/errors"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	errors.WriteHTTP(w, err)
}

func decodeJSON(r *http.Request, v interface{}) error {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errors.NewValidationError("body", "invalid JSON payload", nil)
	}
	return nil
}
