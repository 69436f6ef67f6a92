package websocket

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

var Upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Event trafia do wszystkich podłączonych klientów właściciela po zmianie
// w jego plikach lub folderach.
type Event struct {
	EventType string      `json:"event_type"`
	Payload   interface{} `json:"payload"`
}

type Hub struct {
	clients    map[int64]map[*Client]bool
	mu         sync.RWMutex
	Register   chan *Client
	Unregister chan *Client
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[int64]map[*Client]bool),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.registerClient(client)
		case client := <-h.Unregister:
			h.unregisterClient(client)
		}
	}
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[client.UserID]; !ok {
		h.clients[client.UserID] = make(map[*Client]bool)
	}
	h.clients[client.UserID][client] = true
	log.Printf("Klient użytkownika %d podłączony", client.UserID)
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if userClients, ok := h.clients[client.UserID]; ok {
		if _, ok := userClients[client]; ok {
			delete(userClients, client)
			close(client.send)
			if len(userClients) == 0 {
				delete(h.clients, client.UserID)
			}
			log.Printf("Klient użytkownika %d odłączony", client.UserID)
		}
	}
}

// PublishEvent wysyła zdarzenie do wszystkich klientów danego użytkownika.
// Best-effort: pełny bufor klienta oznacza porzucenie wiadomości, nigdy
// blokowanie żądania, które zdarzenie wygenerowało.
func (h *Hub) PublishEvent(userID int64, eventType string, payload interface{}) {
	data, err := json.Marshal(Event{EventType: eventType, Payload: payload})
	if err != nil {
		log.Printf("ERROR: Nie można zserializować zdarzenia %s: %v", eventType, err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	if userClients, ok := h.clients[userID]; ok {
		for client := range userClients {
			select {
			case client.send <- data:
			default:
				log.Printf("WARN: Bufor klienta użytkownika %d pełny. Wiadomość porzucona.", userID)
			}
		}
	}
}
