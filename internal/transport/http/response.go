package http

import (
	"errors"
	"net/http"

	"github.com/goccy/go-json"
	zlog "github.com/rs/zerolog/log"
	"quiz-stats-service/internal/domain"
)

type errorBody struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

type okBody struct {
	OK bool `json:"ok"`
}

type reportBody struct {
	OK bool `json:"ok"`
	domain.Report
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	payload, err := json.Marshal(v)
	if err != nil {
		zlog.Error().Err(err).Msg("encode response")
		http.Error(w, `{"ok":false,"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(payload)
}

// writeError maps the error taxonomy onto status codes: validation failures are
// 400 with their reason, sink and source failures 500 with the underlying message.
func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusFor(err), errorBody{OK: false, Error: messageFor(err)})
}

func statusFor(err error) int {
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func messageFor(err error) string {
	var (
		ve *domain.ValidationError
		ie *domain.IngestionError
		ue *domain.UpstreamError
	)
	switch {
	case errors.As(err, &ve):
		return ve.Reason
	case errors.As(err, &ie):
		return ie.Err.Error()
	case errors.As(err, &ue):
		return ue.Err.Error()
	}
	zlog.Error().Err(err).Msg("unhandled error")
	return "internal error"
}
