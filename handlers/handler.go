package handlers

import (
	"EvergreenShareAPI/database"
	"EvergreenShareAPI/services"
)

type Handler struct {
	db          *database.Database
	authService *services.AuthService
	dispatcher  *services.Dispatcher
	scheduler   *services.Scheduler
	registry    *services.AccountRegistry
	queue       *services.QueueService
	history     *services.HistoryLog
}

func NewHandler(db *database.Database, authService *services.AuthService, dispatcher *services.Dispatcher, scheduler *services.Scheduler, registry *services.AccountRegistry, queue *services.QueueService, history *services.HistoryLog) *Handler {
	return &Handler{
		db:          db,
		authService: authService,
		dispatcher:  dispatcher,
		scheduler:   scheduler,
		registry:    registry,
		queue:       queue,
		history:     history,
	}
}
