package httpadapter

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/couchcryptid/streamflow-animator/internal/domain"
	"github.com/couchcryptid/streamflow-animator/internal/engine"
	"github.com/couchcryptid/streamflow-animator/internal/playback"
)

const contentTypeMsgpack = "application/x-msgpack"

// writeResponse encodes v as JSON, or as MessagePack when the request asks
// for format=msgpack. Struct json tags name the fields in both encodings.
func writeResponse(w http.ResponseWriter, r *http.Request, status int, v any) {
	if r.URL.Query().Get("format") == "msgpack" {
		w.Header().Set("Content-Type", contentTypeMsgpack)
		w.WriteHeader(status)
		enc := msgpack.NewEncoder(w)
		enc.SetCustomStructTag("json")
		enc.Encode(v) //nolint:errcheck // client disconnects are not actionable
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // client disconnects are not actionable
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	writeResponse(w, r, statusFor(err), errorResponse{Error: err.Error()})
}

// statusFor maps engine and domain errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, engine.ErrReloadInProgress), errors.Is(err, engine.ErrNoSnapshot):
		return http.StatusConflict
	case errors.Is(err, domain.ErrMalformedDataset):
		return http.StatusUnprocessableEntity
	case errors.Is(err, playback.ErrIndexOutOfRange),
		errors.Is(err, playback.ErrInvalidSpeed),
		errors.Is(err, playback.ErrEmptyTimeAxis),
		errors.Is(err, engine.ErrInvalidInterval),
		errors.Is(err, domain.ErrUnknownVariable):
		return http.StatusBadRequest
	default:
		return http.StatusBadGateway
	}
}
