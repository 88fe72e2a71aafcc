package favorites

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/favorites", func(fr chi.Router) {
		fr.Get("/", listFavoritesHandler(svc))
		fr.Put("/{name}", addFavoriteHandler(svc))
		fr.Delete("/{name}", removeFavoriteHandler(svc))
	})
}

// listFavoritesHandler godoc
// @Summary Listar favoritos
// @Tags favorites
// @Produce json
// @Success 200 {array} string
// @Router /favorites [get]
func listFavoritesHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, svc.List())
	}
}

// addFavoriteHandler godoc
// @Summary Marcar favorito
// @Description Idempotente. El nombre se compara sin distinguir mayúsculas.
// @Tags favorites
// @Param name path string true "Nombre de la sustancia"
// @Success 204
// @Failure 400 {string} string "invalid input"
// @Router /favorites/{name} [put]
func addFavoriteHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Add(r.Context(), chi.URLParam(r, "name")); err != nil {
			if errors.Is(err, ErrInvalidInput) {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// removeFavoriteHandler godoc
// @Summary Quitar favorito
// @Tags favorites
// @Param name path string true "Nombre de la sustancia"
// @Success 204
// @Failure 404 {string} string "favorite not found"
// @Router /favorites/{name} [delete]
func removeFavoriteHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Remove(r.Context(), chi.URLParam(r, "name")); err != nil {
			if errors.Is(err, ErrNotFound) {
				http.Error(w, "favorite not found", http.StatusNotFound)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
