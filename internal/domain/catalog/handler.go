package catalog

import (
	"encoding/json"
	"errors"
	"net/http"

	"dose-timeline/internal/domain/substances"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/substances", func(sr chi.Router) {
		sr.Get("/", browseHandler(svc))
		sr.Get("/{name}", detailHandler(svc))
	})
}

// browseResponse: degraded=true si el catálogo no respondió (items vacío).
type browseResponse struct {
	Items    []substances.Item `json:"items"`
	Degraded bool              `json:"degraded"`
}

// browseHandler godoc
// @Summary Buscar sustancias
// @Description Sin `search` lista todo el catálogo; con texto busca por subcadena (case-insensitive). Favoritos primero. Si el catálogo no responde devuelve lista vacía con degraded=true.
// @Tags substances
// @Produce json
// @Param search query string false "Texto a buscar"
// @Success 200 {object} browseResponse
// @Router /substances [get]
func browseHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.Browse(r.Context(), r.URL.Query().Get("search"))
		writeJSON(w, http.StatusOK, browseResponse{
			Items:    items,
			Degraded: errors.Is(err, ErrUnavailable),
		})
	}
}

// detailHandler godoc
// @Summary Detalle de sustancia
// @Description Registro completo: vías, dosis, duraciones e interacciones.
// @Tags substances
// @Produce json
// @Param name path string true "Nombre de la sustancia"
// @Success 200 {object} substances.Substance
// @Failure 404 {string} string "substance not found"
// @Failure 503 {string} string "catalog unavailable"
// @Router /substances/{name} [get]
func detailHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sub, err := svc.GetDetail(r.Context(), chi.URLParam(r, "name"))
		switch {
		case err == nil:
			writeJSON(w, http.StatusOK, sub)
		case errors.Is(err, ErrNotFound):
			http.Error(w, "substance not found", http.StatusNotFound)
		case errors.Is(err, ErrUnavailable):
			http.Error(w, "catalog unavailable", http.StatusServiceUnavailable)
		default:
			http.Error(w, "internal error", http.StatusInternalServerError)
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
