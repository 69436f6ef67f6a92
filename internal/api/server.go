package api

import (
	"chmura-plikow/internal/config"
	"chmura-plikow/internal/database"
	"chmura-plikow/internal/storage"
	"chmura-plikow/internal/websocket"

	"github.com/go-playground/validator/v10"
)

type Server struct {
	config   *config.Config
	store    *database.Store
	storage  storage.Storage
	wsHub    *websocket.Hub
	validate *validator.Validate
}

func NewServer(cfg *config.Config, store *database.Store, storage storage.Storage, wsHub *websocket.Hub) *Server {
	return &Server{
		config:   cfg,
		store:    store,
		storage:  storage,
		wsHub:    wsHub,
		validate: validator.New(),
	}
}

// publishEvent rozsyła powiadomienie do podłączonych klientów właściciela.
func (s *Server) publishEvent(userID int64, eventType string, payload interface{}) {
	if s.wsHub == nil {
		return
	}
	s.wsHub.PublishEvent(userID, eventType, payload)
}
