package http

import (
	"net/http"

	"github.com/goccy/go-json"
	"quiz-stats-service/internal/app"
	"quiz-stats-service/internal/domain"
)

const maxEventBody = 64 << 10

// EventsHandler exposes event ingestion and the statistics report over REST.
type EventsHandler struct {
	ingest *app.IngestService
	stats  *app.StatsService
}

func NewEventsHandler(ingest *app.IngestService, stats *app.StatsService) *EventsHandler {
	return &EventsHandler{ingest: ingest, stats: stats}
}

// Log handles POST /api/quiz/log.
func (h *EventsHandler) Log(w http.ResponseWriter, r *http.Request) {
	var candidate domain.CandidateEvent
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxEventBody)).Decode(&candidate); err != nil {
		writeError(w, domain.ErrValidation("invalid JSON body"))
		return
	}
	if _, err := h.ingest.Ingest(r.Context(), candidate); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, okBody{OK: true})
}

// Stats handles GET /api/quiz/stats?start=YYYY-MM-DD&end=YYYY-MM-DD.
func (h *EventsHandler) Stats(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	report, err := h.stats.Report(r.Context(), domain.DateRange{
		Start: q.Get("start"),
		End:   q.Get("end"),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reportBody{OK: true, Report: report})
}
