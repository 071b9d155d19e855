package handlers

import (
	"net/http"

	"github.com/lehigh-university-libraries/matchcv/internal/models"
)

// HandleProfiles lists the server's profiles, or returns one when the name
// query parameter is set.
func (h *Handler) HandleProfiles(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case "GET":
		if name := r.URL.Query().Get("name"); name != "" {
			p, ok := h.profileStore.Get(name)
			if !ok {
				h.writeError(w, "Profile not found", http.StatusNotFound)
				return
			}
			h.writeJSON(w, models.NewProfileInfo(p))
			return
		}

		all := h.profileStore.GetAll()
		list := make([]models.ProfileInfo, 0, len(all))
		for _, p := range all {
			list = append(list, models.NewProfileInfo(p))
		}
		h.writeJSON(w, list)
	default:
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}
