package timeline

import (
	"encoding/json"
	"math"
	"net/http"
	"strings"
	"time"

	"dose-timeline/internal/domain/doselog"

	"github.com/dustin/go-humanize"
	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, src Source, now func() time.Time) {
	if now == nil {
		now = time.Now
	}
	r.Get("/timeline", getTimelineHandler(src, now))
}

// windowResponse es una dosis con su ventana de efecto calculada.
type windowResponse struct {
	Entry           doselog.Entry `json:"entry"`
	Start           time.Time     `json:"start"`
	End             time.Time     `json:"end"`
	Active          bool          `json:"active"`
	ProgressPercent float64       `json:"progress_percent"`
	Started         string        `json:"started"` // "3 minutes ago"
}

type timelineResponse struct {
	Now     time.Time        `json:"now"`
	Active  []windowResponse `json:"active"`
	History []windowResponse `json:"history"`
}

// getTimelineHandler godoc
// @Summary Timeline de dosis
// @Description Separa el historial en dosis activas (con progreso 0-100) e históricas. `at` permite consultar otro instante.
// @Tags timeline
// @Produce json
// @Param at query string false "Instante de referencia (RFC3339). Por defecto ahora"
// @Success 200 {object} timelineResponse
// @Failure 400 {string} string "at must be RFC3339"
// @Router /timeline [get]
func getTimelineHandler(src Source, now func() time.Time) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		at := now()
		if v := strings.TrimSpace(r.URL.Query().Get("at")); v != "" {
			t, err := time.Parse(time.RFC3339, v)
			if err != nil {
				http.Error(w, "at must be RFC3339", http.StatusBadRequest)
				return
			}
			at = t
		}

		view := Partition(src.List(r.Context()), at)
		writeJSON(w, http.StatusOK, toTimelineResponse(view))
	}
}

func toTimelineResponse(v View) timelineResponse {
	out := timelineResponse{
		Now:     v.Now,
		Active:  make([]windowResponse, 0, len(v.Active)),
		History: make([]windowResponse, 0, len(v.History)),
	}
	for _, w := range v.Active {
		out.Active = append(out.Active, toWindowResponse(w, v.Now))
	}
	for _, w := range v.History {
		out.History = append(out.History, toWindowResponse(w, v.Now))
	}
	return out
}

func toWindowResponse(w Window, now time.Time) windowResponse {
	return windowResponse{
		Entry:           w.Entry,
		Start:           w.Start,
		End:             w.End,
		Active:          w.Active,
		ProgressPercent: math.Round(w.ProgressPercent*10) / 10,
		Started:         humanize.RelTime(w.Start, now, "ago", "from now"),
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
