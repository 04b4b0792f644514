package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"EvergreenShareAPI/models"
	"EvergreenShareAPI/utils"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

type createAccountRequest struct {
	Service       models.ServiceType `json:"service"`
	Name          string             `json:"name"`
	Credentials   models.Credentials `json:"credentials"`
	Active        *bool              `json:"active,omitempty"`
	PostsPerShare int                `json:"posts_per_share,omitempty"`
	Schedule      models.Schedule    `json:"schedule"`
	Filters       models.PostFilters `json:"filters"`
}

func (h *Handler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	var req createAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if req.Service == "" || req.Name == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "service and name are required")
		return
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	now := time.Now()
	account := &models.Account{
		// Service-prefixed IDs let the pipeline recognize provider families
		// (the gmb stale-token refresh) without a registry lookup.
		ID:            fmt.Sprintf("%s_%s", req.Service, strings.ReplaceAll(uuid.New().String(), "-", "")[:12]),
		Service:       req.Service,
		Name:          req.Name,
		Credentials:   req.Credentials,
		Active:        active,
		PostsPerShare: req.PostsPerShare,
		Schedule:      req.Schedule,
		Filters:       req.Filters,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := h.db.CreateAccount(account); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Error creating account")
		return
	}
	h.registry.Refresh()

	utils.RespondWithJSON(w, http.StatusCreated, account)
}

func (h *Handler) GetAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.db.GetActiveAccounts()
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Error fetching accounts")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, accounts)
}

func (h *Handler) UpdateAccount(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	account, err := h.db.GetAccount(id)
	if err != nil {
		utils.RespondWithError(w, http.StatusNotFound, "Account not found")
		return
	}

	var req createAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if req.Name != "" {
		account.Name = req.Name
	}
	if req.Credentials != nil {
		account.Credentials = req.Credentials
	}
	if req.Active != nil {
		account.Active = *req.Active
	}
	if req.PostsPerShare > 0 {
		account.PostsPerShare = req.PostsPerShare
	}
	if req.Schedule.Type != "" {
		account.Schedule = req.Schedule
	}
	account.Filters = req.Filters
	account.UpdatedAt = time.Now()

	if err := h.db.UpdateAccount(account); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Error updating account")
		return
	}
	h.registry.Refresh()

	utils.RespondWithJSON(w, http.StatusOK, account)
}
