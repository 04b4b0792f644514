package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"EvergreenShareAPI/models"
	"EvergreenShareAPI/services"
	"EvergreenShareAPI/utils"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

func (h *Handler) CreatePost(w http.ResponseWriter, r *http.Request) {
	var post models.Post
	if err := json.NewDecoder(r.Body).Decode(&post); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if post.Title == "" && post.Content == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "title or content is required")
		return
	}

	if post.ID == "" {
		post.ID = uuid.New().String()
	}
	if post.PostType == "" {
		post.PostType = "post"
	}
	if post.CreatedAt.IsZero() {
		post.CreatedAt = time.Now()
	}

	if err := h.db.CreatePost(&post); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Error creating post")
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, post)
}

func (h *Handler) GetPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := h.db.GetPosts()
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Error fetching posts")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, posts)
}

func (h *Handler) GetPost(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	post, err := h.db.GetPost(id)
	if err != nil {
		utils.RespondWithError(w, http.StatusNotFound, "Post not found")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, post)
}

// ShareNow triggers an instant share of a post to the requested accounts and
// dispatches the instant queue in the background. The response lists the
// accounts that were accepted; history tracks the outcome per account.
func (h *Handler) ShareNow(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if _, err := h.db.GetPost(id); err != nil {
		utils.RespondWithError(w, http.StatusNotFound, "Post not found")
		return
	}

	var req models.ShareNowRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if len(req.Accounts) == 0 {
		utils.RespondWithError(w, http.StatusBadRequest, "at least one account is required")
		return
	}

	accepted, err := h.dispatcher.RequestPublishNow(id, req.Accounts)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Error queueing instant share")
		return
	}

	go h.dispatcher.RunPublishNow()

	utils.RespondWithJSON(w, http.StatusAccepted, map[string]interface{}{
		"post_id":  id,
		"accounts": accepted,
	})
}

func (h *Handler) GetPostHistory(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	records, err := h.history.History(id)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Error fetching history")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, models.HistoryResponse{
		PostID:  id,
		Status:  services.AggregateStatus(records),
		Records: records,
	})
}
