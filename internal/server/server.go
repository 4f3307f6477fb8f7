package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/dukerupert/bywater/internal/backup"
	"github.com/dukerupert/bywater/internal/handler"
	"github.com/dukerupert/bywater/internal/middleware"
	"github.com/dukerupert/bywater/internal/push"
	"github.com/dukerupert/bywater/internal/store"
	ws "github.com/dukerupert/bywater/internal/websocket"
)

// Config carries the optional service configuration the server wires up.
type Config struct {
	VAPIDPublicKey  string
	VAPIDPrivateKey string
	PushSubscriber  string
	Backup          backup.Config
}

type Server struct {
	db     *sql.DB
	hub    *ws.Hub
	logger *slog.Logger

	userH        *handler.UserHandler
	registryH    *handler.RegistryHandler
	itemH        *handler.ItemHandler
	groceryH     *handler.GroceryHandler
	templateH    *handler.TemplateHandler
	providerH    *handler.ProviderHandler
	appointmentH *handler.AppointmentHandler
	taskH        *handler.TaskHandler
	pushH        *handler.PushHandler
	backupH      *handler.BackupHandler

	pushScheduler *push.Scheduler
	backupManager *backup.Manager
}

func New(db *sql.DB, cfg Config, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger.With("component", "websocket"))

	userStore := store.NewUserStore(db)
	registry := store.NewRegistry(db)
	itemStore := store.NewItemStore(db)
	groceryStore := store.NewGroceryStore(db)
	templateStore := store.NewTemplateStore(db)
	providerStore := store.NewProviderStore(db)
	appointmentStore := store.NewAppointmentStore(db)
	taskStore := store.NewTaskStore(db)
	pushStore := store.NewPushStore(db)
	backupStore := store.NewBackupStore(db)

	var pushSvc *push.Service
	var pushSched *push.Scheduler
	if cfg.VAPIDPublicKey != "" && cfg.VAPIDPrivateKey != "" {
		pushLogger := logger.With("component", "push")
		pushSvc = push.NewService(cfg.VAPIDPublicKey, cfg.VAPIDPrivateKey, cfg.PushSubscriber)
		pushSched = push.NewScheduler(pushSvc, pushStore, appointmentStore, taskStore, pushLogger)
	}

	backupMgr := backup.NewManager(cfg.Backup, db, backupStore, logger.With("component", "backup"))

	return &Server{
		db:     db,
		hub:    hub,
		logger: logger,

		userH:        handler.NewUserHandler(userStore, logger.With("component", "user")),
		registryH:    handler.NewRegistryHandler(registry, hub, logger.With("component", "store")),
		itemH:        handler.NewItemHandler(itemStore, hub, logger.With("component", "item")),
		groceryH:     handler.NewGroceryHandler(groceryStore, hub, logger.With("component", "grocery")),
		templateH:    handler.NewTemplateHandler(templateStore, hub, logger.With("component", "template")),
		providerH:    handler.NewProviderHandler(providerStore, hub, logger.With("component", "provider")),
		appointmentH: handler.NewAppointmentHandler(appointmentStore, hub, logger.With("component", "appointment")),
		taskH:        handler.NewTaskHandler(taskStore, hub, logger.With("component", "task")),
		pushH:        handler.NewPushHandler(pushSvc, pushStore, logger.With("component", "push_handler")),
		backupH:      handler.NewBackupHandler(backupMgr, backupStore, logger.With("component", "backup_handler")),

		pushScheduler: pushSched,
		backupManager: backupMgr,
	}
}

// PushScheduler returns the scheduler, nil when push is not configured.
func (s *Server) PushScheduler() *push.Scheduler {
	return s.pushScheduler
}

// BackupManager returns the backup manager.
func (s *Server) BackupManager() *backup.Manager {
	return s.backupManager
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.healthHandler)
	mux.HandleFunc("GET /ws", ws.Handler(s.hub))

	mux.HandleFunc("GET /api/users", s.userH.List)
	mux.HandleFunc("POST /api/users", s.userH.Create)
	mux.HandleFunc("GET /api/users/{id}", s.userH.Get)

	mux.HandleFunc("GET /api/stores", s.registryH.List)
	mux.HandleFunc("POST /api/stores", s.registryH.Create)
	mux.HandleFunc("GET /api/stores/{id}", s.registryH.Get)
	mux.HandleFunc("PUT /api/stores/{id}", s.registryH.Update)
	mux.HandleFunc("DELETE /api/stores/{id}", s.registryH.Delete)

	mux.HandleFunc("GET /api/items", s.itemH.List)
	mux.HandleFunc("POST /api/items", s.itemH.Create)
	mux.HandleFunc("GET /api/items/{id}", s.itemH.Get)
	mux.HandleFunc("PUT /api/items/{id}", s.itemH.Update)
	mux.HandleFunc("DELETE /api/items/{id}", s.itemH.Delete)

	mux.HandleFunc("GET /api/grocery-items", s.groceryH.List)
	mux.HandleFunc("POST /api/grocery-items", s.groceryH.Add)
	mux.HandleFunc("GET /api/grocery-items/{id}", s.groceryH.Get)
	mux.HandleFunc("PUT /api/grocery-items/{id}", s.groceryH.Update)
	mux.HandleFunc("DELETE /api/grocery-items/{id}", s.groceryH.Delete)

	mux.HandleFunc("GET /api/grocery-templates", s.templateH.List)
	mux.HandleFunc("POST /api/grocery-templates", s.templateH.Create)
	mux.HandleFunc("GET /api/grocery-templates/{id}", s.templateH.Get)
	mux.HandleFunc("PUT /api/grocery-templates/{id}", s.templateH.Update)
	mux.HandleFunc("DELETE /api/grocery-templates/{id}", s.templateH.Delete)
	mux.HandleFunc("POST /api/grocery-templates/{id}/items", s.templateH.AddItem)
	mux.HandleFunc("DELETE /api/grocery-templates/{id}/items/{item_id}", s.templateH.RemoveItem)
	mux.HandleFunc("POST /api/grocery-templates/{id}/apply", s.templateH.Apply)

	mux.HandleFunc("GET /api/providers", s.providerH.List)
	mux.HandleFunc("POST /api/providers", s.providerH.Create)
	mux.HandleFunc("GET /api/providers/{id}", s.providerH.Get)
	mux.HandleFunc("PUT /api/providers/{id}", s.providerH.Update)
	mux.HandleFunc("DELETE /api/providers/{id}", s.providerH.Delete)

	mux.HandleFunc("GET /api/appointments", s.appointmentH.List)
	mux.HandleFunc("POST /api/appointments", s.appointmentH.Create)
	mux.HandleFunc("GET /api/appointments/{id}", s.appointmentH.Get)
	mux.HandleFunc("PUT /api/appointments/{id}", s.appointmentH.Update)
	mux.HandleFunc("DELETE /api/appointments/{id}", s.appointmentH.Delete)
	mux.HandleFunc("DELETE /api/appointments/{id}/provider", s.appointmentH.ClearProvider)

	mux.HandleFunc("GET /api/tasks", s.taskH.List)
	mux.HandleFunc("POST /api/tasks", s.taskH.Create)
	mux.HandleFunc("GET /api/tasks/{id}", s.taskH.Get)
	mux.HandleFunc("PUT /api/tasks/{id}", s.taskH.Update)
	mux.HandleFunc("DELETE /api/tasks/{id}", s.taskH.Delete)

	mux.HandleFunc("POST /api/push/subscribe", s.pushH.Subscribe)
	mux.HandleFunc("POST /api/push/unsubscribe", s.pushH.Unsubscribe)
	mux.HandleFunc("GET /api/push/subscriptions", s.pushH.ListSubscriptions)
	mux.HandleFunc("GET /api/push/vapid-key", s.pushH.VAPIDKey)

	mux.HandleFunc("GET /api/backups", s.backupH.List)
	mux.HandleFunc("POST /api/backups", s.backupH.RunNow)

	return middleware.RequestLogger(s.logger.With("component", "http"))(mux)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
