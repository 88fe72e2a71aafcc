package doselog

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"dose-timeline/internal/domain/substances"

	"github.com/go-chi/chi/v5"
)

// HandlerDeps conecta el alta de dosis con el catálogo y el detector
// sin que este paquete los importe.
type HandlerDeps struct {
	// Lookup resuelve el registro de catálogo. Cualquier error => entrada ad hoc.
	Lookup func(ctx context.Context, name string) (substances.Substance, error)

	// Advise devuelve la advertencia de interacción para la sustancia, o nil.
	// Es solo informativa: nunca bloquea el alta.
	Advise func(ctx context.Context, name string) any
}

func RegisterRoutes(r chi.Router, svc *Service, deps HandlerDeps) {
	r.Route("/doses", func(dr chi.Router) {
		dr.Post("/", createDoseHandler(svc, deps))
		dr.Get("/", listDosesHandler(svc))
		dr.Delete("/", clearDosesHandler(svc))

		dr.Get("/export", exportDosesHandler(svc))
		dr.Post("/import", importDosesHandler(svc))

		dr.Get("/{doseID}", getDoseHandler(svc))
		dr.Patch("/{doseID}", updateDoseHandler(svc))
		dr.Delete("/{doseID}", deleteDoseHandler(svc))
	})

	r.Get("/stats", statsHandler(svc))
}

// createDoseRequest es el cuerpo para registrar una dosis.
type createDoseRequest struct {
	Substance string          `json:"substance"`
	Route     string          `json:"route"`
	Amount    json.RawMessage `json:"amount" swaggertype:"string"`
	Unit      string          `json:"unit"`      // solo para entradas ad hoc
	Timestamp string          `json:"timestamp"` // RFC3339, opcional (default: ahora)
	Notes     string          `json:"notes"`
}

// createDoseResponse devuelve la dosis creada y la advertencia de interacción (si hubo).
type createDoseResponse struct {
	Entry   Entry `json:"entry"`
	Warning any   `json:"warning"`
}

type updateDoseRequest struct {
	// Punteros para PATCH real: nil = no tocar.
	Amount                   *json.RawMessage `json:"amount" swaggertype:"string"`
	Notes                    *string          `json:"notes"`
	Timestamp                *string          `json:"timestamp"` // RFC3339
	EstimatedDurationMinutes *int             `json:"estimatedDurationMinutes"`
}

type importResponse struct {
	Imported int   `json:"imported"`
	Stats    Stats `json:"stats"`
}

// amountText acepta "12.5" o 12.5 y devuelve el texto para ParseAmount.
func amountText(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return strings.TrimSpace(string(raw))
}

// createDoseHandler godoc
// @Summary Registrar una dosis
// @Description Registra una dosis. Si el catálogo conoce la sustancia se toman la unidad, la duración estimada y el snapshot de interacciones de la vía elegida; si no, queda como entrada ad hoc con 240 minutos. La advertencia de interacción es informativa.
// @Tags doses
// @Accept json
// @Produce json
// @Param payload body createDoseRequest true "Dosis; amount acepta texto o número"
// @Success 201 {object} createDoseResponse
// @Failure 400 {string} string "invalid json / validation error"
// @Router /doses [post]
func createDoseHandler(svc *Service, deps HandlerDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createDoseRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		at := time.Time{}
		if strings.TrimSpace(req.Timestamp) != "" {
			t, err := time.Parse(time.RFC3339, req.Timestamp)
			if err != nil {
				http.Error(w, "timestamp must be RFC3339", http.StatusBadRequest)
				return
			}
			at = t
		}

		amount := amountText(req.Amount)

		d := Draft{
			SubstanceName: req.Substance,
			Amount:        amount,
			Unit:          req.Unit,
			Route:         req.Route,
			Timestamp:     at,
			Notes:         req.Notes,
		}
		if deps.Lookup != nil && strings.TrimSpace(req.Substance) != "" {
			if sub, err := deps.Lookup(r.Context(), req.Substance); err == nil {
				d = NewDraft(sub, req.Route, amount, at, req.Notes)
			}
		}

		var warning any
		if deps.Advise != nil && strings.TrimSpace(d.SubstanceName) != "" {
			warning = deps.Advise(r.Context(), d.SubstanceName)
		}

		e, err := svc.Add(r.Context(), d)
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, createDoseResponse{Entry: e, Warning: warning})
	}
}

// listDosesHandler godoc
// @Summary Listar dosis
// @Description Devuelve todas las dosis, más recientes primero (por timestamp).
// @Tags doses
// @Produce json
// @Success 200 {array} Entry
// @Router /doses [get]
func listDosesHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items := svc.List(r.Context())
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].Timestamp > items[j].Timestamp
		})
		writeJSON(w, http.StatusOK, items)
	}
}

// getDoseHandler godoc
// @Summary Obtener una dosis
// @Tags doses
// @Produce json
// @Param doseID path string true "ID de la dosis"
// @Success 200 {object} Entry
// @Failure 404 {string} string "dose not found"
// @Router /doses/{doseID} [get]
func getDoseHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		e, err := svc.Get(r.Context(), chi.URLParam(r, "doseID"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, e)
	}
}

// updateDoseHandler godoc
// @Summary Editar una dosis
// @Description PATCH parcial: amount, notes, timestamp (RFC3339) y estimatedDurationMinutes. El id nunca cambia.
// @Tags doses
// @Accept json
// @Produce json
// @Param doseID path string true "ID de la dosis"
// @Param payload body updateDoseRequest true "Campos a modificar"
// @Success 200 {object} Entry
// @Failure 400 {string} string "invalid json / validation error"
// @Failure 404 {string} string "dose not found"
// @Router /doses/{doseID} [patch]
func updateDoseHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()

		var req updateDoseRequest
		if err := dec.Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		var p Patch
		if req.Amount != nil {
			s := amountText(*req.Amount)
			p.Amount = &s
		}
		p.Notes = req.Notes
		p.EstimatedDurationMinutes = req.EstimatedDurationMinutes
		if req.Timestamp != nil {
			t, err := time.Parse(time.RFC3339, *req.Timestamp)
			if err != nil {
				http.Error(w, "timestamp must be RFC3339", http.StatusBadRequest)
				return
			}
			p.Timestamp = &t
		}

		e, err := svc.Update(r.Context(), chi.URLParam(r, "doseID"), p)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, e)
	}
}

// deleteDoseHandler godoc
// @Summary Borrar una dosis
// @Tags doses
// @Param doseID path string true "ID de la dosis"
// @Success 204
// @Failure 404 {string} string "dose not found"
// @Router /doses/{doseID} [delete]
func deleteDoseHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Remove(r.Context(), chi.URLParam(r, "doseID")); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// clearDosesHandler godoc
// @Summary Borrar todo el historial
// @Description Acción destructiva: requiere confirm=true.
// @Tags doses
// @Param confirm query bool true "Debe ser true"
// @Success 204
// @Failure 400 {string} string "confirm=true required"
// @Router /doses [delete]
func clearDosesHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("confirm") != "true" {
			http.Error(w, "confirm=true required", http.StatusBadRequest)
			return
		}
		if err := svc.Clear(r.Context()); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// exportDosesHandler godoc
// @Summary Exportar historial
// @Description Descarga el historial completo como array JSON (mismo formato que acepta /doses/import).
// @Tags doses
// @Produce json
// @Success 200 {array} Entry
// @Router /doses/export [get]
func exportDosesHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b, err := svc.Export(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		name := "dose-log-" + svc.now().Format("2006-01-02") + ".json"
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(b)
	}
}

// importDosesHandler godoc
// @Summary Importar historial
// @Description Carga un export. mode=replace (default) reemplaza todo; mode=merge hace upsert por id.
// @Tags doses
// @Accept json
// @Produce json
// @Param mode query string false "replace | merge"
// @Param payload body []Entry true "Export previo"
// @Success 200 {object} importResponse
// @Failure 400 {string} string "validation error"
// @Router /doses/import [post]
func importDosesHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, err := io.ReadAll(io.LimitReader(r.Body, 16<<20))
		if err != nil {
			http.Error(w, "invalid body", http.StatusBadRequest)
			return
		}

		n, err := svc.Import(r.Context(), data, ImportMode(r.URL.Query().Get("mode")))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, importResponse{Imported: n, Stats: svc.Stats(r.Context())})
	}
}

// statsHandler godoc
// @Summary Estadísticas del historial
// @Tags doses
// @Produce json
// @Success 200 {object} Stats
// @Router /stats [get]
func statsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, svc.Stats(r.Context()))
	}
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrValidation):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrNotFound):
		http.Error(w, "dose not found", http.StatusNotFound)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
