package api

import (
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"

	"github.com/vytor/vocabquiz/internal/errors"
	"github.com/vytor/vocabquiz/internal/logger"
	"github.com/vytor/vocabquiz/internal/validator"
)

const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.FromContext(r.Context()).Error("failed to encode response: %v", err)
	}
}

// decodeJSON reads the request body into dst and validates it. An empty body
// leaves dst at its zero value when allowEmpty is set.
func decodeJSON(r *http.Request, dst any, allowEmpty bool) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if !(allowEmpty && stderrors.Is(err, io.EOF)) {
			logger.FromContext(r.Context()).Warn("invalid request body: %v", err)
			return errors.NewBadRequestError("invalid JSON body")
		}
	}
	return validator.ValidateStruct(dst)
}
