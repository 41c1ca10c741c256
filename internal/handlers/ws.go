package handlers

import (
	"log"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/haven-dev/haven/internal/models"
	"github.com/haven-dev/haven/internal/types"
)

var (
	spaceClients   = make(map[uint]map[*websocket.Conn]bool)
	spaceClientsMu sync.RWMutex
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

// BroadcastIncidentCreated pushes a live notification to every client
// watching the space. Dropped connections are pruned as they fail.
func BroadcastIncidentCreated(spaceID uint, incident models.Incident) {
	spaceClientsMu.RLock()
	clients, exists := spaceClients[spaceID]
	if !exists || len(clients) == 0 {
		spaceClientsMu.RUnlock()
		return
	}

	clientsCopy := make([]*websocket.Conn, 0, len(clients))
	for conn := range clients {
		clientsCopy = append(clientsCopy, conn)
	}
	spaceClientsMu.RUnlock()

	for _, conn := range clientsCopy {
		if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
			log.Printf("Failed to set write deadline for broadcast: %v", err)
			continue
		}

		err := conn.WriteJSON(map[string]interface{}{
			"type":        "incident_created",
			"space_id":    spaceID,
			"incident_id": incident.ID,
			"title":       incident.Title,
			"severity":    incident.Severity,
		})

		if err != nil {
			log.Printf("Failed to broadcast incident to client: %v", err)
			spaceClientsMu.Lock()
			if clients, exists := spaceClients[spaceID]; exists {
				delete(clients, conn)
				if len(clients) == 0 {
					delete(spaceClients, spaceID)
				}
			}
			spaceClientsMu.Unlock()
			conn.Close()
		}
	}
}

// WebSocket streams live incident notifications for one owned space.
func WebSocket(c *gin.Context) {
	space, ok := requireOwnedSpace(c)

	if !ok {
		return
	}

	spaceID := space.ID

	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			for _, allowed := range types.AllowedOrigins {
				if origin == allowed {
					return true
				}
			}
			return false
		},
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	conn.SetReadLimit(maxMessageSize)
	if err := conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		log.Printf("Failed to set initial read deadline: %v", err)
		return
	}
	conn.SetPongHandler(func(string) error {
		if err := conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
			log.Printf("Failed to set read deadline in pong handler: %v", err)
		}
		return nil
	})

	spaceClientsMu.Lock()
	if spaceClients[spaceID] == nil {
		spaceClients[spaceID] = make(map[*websocket.Conn]bool)
	}
	spaceClients[spaceID][conn] = true
	spaceClientsMu.Unlock()

	defer func() {
		spaceClientsMu.Lock()

		if clients, exists := spaceClients[spaceID]; exists {
			delete(clients, conn)

			if len(clients) == 0 {
				delete(spaceClients, spaceID)
			}
		}

		spaceClientsMu.Unlock()
		conn.Close()

		log.Printf("WebSocket connection closed for space %d", spaceID)
	}()

	if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		log.Printf("Failed to set write deadline for welcome message: %v", err)
		return
	}

	err = conn.WriteJSON(map[string]string{
		"type":     "connected",
		"message":  "WebSocket connection established",
		"space_id": strconv.FormatUint(uint64(spaceID), 10),
	})

	if err != nil {
		log.Printf("Failed to send welcome message: %v", err)
		return
	}

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	go func() {
		for range ticker.C {
			if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				log.Printf("Failed to set write deadline for space %d: %v", spaceID, err)
				return
			}
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Printf("Ping failed for space %d: %v", spaceID, err)
				return
			}
		}
	}()

	for {
		if err := conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
			log.Printf("Failed to set read deadline for space %d: %v", spaceID, err)
			break
		}

		_, _, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error for space %d: %v", spaceID, err)
			}
			break
		}
	}
}
