package interactions

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, c *Checker) {
	r.Get("/interactions/check", checkHandler(c))
}

// checkResponse: warning es null cuando no hay nada que advertir.
type checkResponse struct {
	Substance string   `json:"substance"`
	Warning   *Finding `json:"warning"`
}

// checkHandler godoc
// @Summary Chequear interacciones
// @Description Indica si registrar la sustancia ahora choca con alguna sustancia activa. Solo se reportan severidades iguales o mayores al umbral configurado (por defecto Unsafe).
// @Tags interactions
// @Produce json
// @Param substance query string true "Nombre de la sustancia candidata"
// @Success 200 {object} checkResponse
// @Failure 400 {string} string "substance is required"
// @Router /interactions/check [get]
func checkHandler(c *Checker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimSpace(r.URL.Query().Get("substance"))
		if name == "" {
			http.Error(w, "substance is required", http.StatusBadRequest)
			return
		}

		resp := checkResponse{Substance: name}
		if f, ok := c.Check(r.Context(), name); ok {
			resp.Warning = &f
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(resp)
	}
}
