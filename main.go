package main

import (
	"net/http"

	"EvergreenShareAPI/config"
	"EvergreenShareAPI/database"
	"EvergreenShareAPI/handlers"
	"EvergreenShareAPI/middleware"
	"EvergreenShareAPI/publishers"
	"EvergreenShareAPI/services"
	"EvergreenShareAPI/utils"

	"github.com/gorilla/mux"
)

func main() {
	cfg := config.Load()

	db, err := database.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		utils.Fatalf("Failed to connect to database: %v", err)
	}

	clock := services.SystemClock{}
	registry := services.NewAccountRegistry(db)
	selector := services.NewPostSelector(db, db, cfg.BufferSize)
	queue := services.NewQueueService(db, registry)
	scheduler := services.NewScheduler(clock, registry, selector, queue, db,
		cfg.QueueDepth, cfg.DefaultIntervalHours, cfg.CronSpec)
	history := services.NewHistoryLog(db)
	payloads := services.NewPayloadBuilder(db)

	dispatcher := services.NewDispatcher(services.DispatcherConfig{
		Clock:     clock,
		Scheduler: scheduler,
		Queue:     queue,
		Registry:  registry,
		Selector:  selector,
		History:   history,
		Payloads:  payloads,
		Factory:   publishers.NewFactory(),
		State:     db,
		Debug:     cfg.Debug,
		DueWindow: cfg.DueWindow,
	})

	scheduler.Start(dispatcher.RunShareCycle)
	defer scheduler.Stop()

	authService := services.NewAuthService(db, cfg.JWTSecret)
	handler := handlers.NewHandler(db, authService, dispatcher, scheduler, registry, queue, history)

	r := setupRoutes(handler, authService, cfg.CORSAllowedOrigins)

	utils.Infof("Server starting on port %s...", cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, r); err != nil {
		utils.Errorf("Server stopped: %v", err)
	}
}

func setupRoutes(h *handlers.Handler, authService *services.AuthService, corsOrigins []string) *mux.Router {
	r := mux.NewRouter()

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowedOrigins = corsOrigins
	r.Use(middleware.CORS(corsCfg))
	r.Use(middleware.BodyLimit(1 << 20))

	limiter := middleware.NewRateLimiter(10, 20)
	authLimiter := middleware.NewRateLimiter(1, 5)

	// Public routes
	r.HandleFunc("/health", h.HealthCheck).Methods("GET")
	r.HandleFunc("/api/auth/register", authLimiter.LimitHandler(h.Register)).Methods("POST")
	r.HandleFunc("/api/auth/login", authLimiter.LimitHandler(h.Login)).Methods("POST")

	// Protected routes
	protected := r.PathPrefix("/api").Subrouter()
	protected.Use(limiter.Limit())
	protected.Use(middleware.AuthMiddleware(authService))

	protected.HandleFunc("/me", h.GetCurrentUser).Methods("GET")

	protected.HandleFunc("/accounts", h.CreateAccount).Methods("POST")
	protected.HandleFunc("/accounts", h.GetAccounts).Methods("GET")
	protected.HandleFunc("/accounts/{id}", h.UpdateAccount).Methods("PUT")

	protected.HandleFunc("/posts", h.CreatePost).Methods("POST")
	protected.HandleFunc("/posts", h.GetPosts).Methods("GET")
	protected.HandleFunc("/posts/{id}", h.GetPost).Methods("GET")
	protected.HandleFunc("/posts/{id}/share-now", h.ShareNow).Methods("POST")
	protected.HandleFunc("/posts/{id}/history", h.GetPostHistory).Methods("GET")

	protected.HandleFunc("/queue", h.GetQueue).Methods("GET")
	protected.HandleFunc("/sharing", h.ToggleSharing).Methods("PUT")

	return r
}
