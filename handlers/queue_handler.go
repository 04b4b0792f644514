package handlers

import (
	"encoding/json"
	"net/http"

	"EvergreenShareAPI/utils"
)

func (h *Handler) GetQueue(w http.ResponseWriter, r *http.Request) {
	queue, err := h.queue.Load()
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Error loading queue")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, queue)
}

type sharingToggleRequest struct {
	Enabled bool `json:"enabled"`
}

// ToggleSharing flips the sharing switch. When turned off the dispatch tick
// is stopped on the next pass; turning it back on re-arms immediately.
func (h *Handler) ToggleSharing(w http.ResponseWriter, r *http.Request) {
	var req sharingToggleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if err := h.scheduler.SetEnabled(req.Enabled); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Error updating sharing switch")
		return
	}
	h.scheduler.Rearm()

	utils.RespondWithJSON(w, http.StatusOK, map[string]bool{"enabled": req.Enabled})
}
