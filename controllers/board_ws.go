package controller

import (
	"log"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
)

// BoardEvent is pushed to connected board clients whenever a card changes
type BoardEvent struct {
	Type     string    `json:"type"` // card_created, card_updated, card_moved, card_completed
	CardID   uint      `json:"card_id"`
	ColumnID uint      `json:"column_id"`
	Title    string    `json:"title"`
	At       time.Time `json:"at"`
}

var boardHub = struct {
	sync.Mutex
	conns map[*websocket.Conn]struct{}
}{conns: make(map[*websocket.Conn]struct{})}

// PublishBoardEvent fans an event out to every connected board client.
// Best-effort: a dead connection is dropped, never retried.
func PublishBoardEvent(ev BoardEvent) {
	if ev.At.IsZero() {
		ev.At = time.Now()
	}

	boardHub.Lock()
	defer boardHub.Unlock()

	for conn := range boardHub.conns {
		if err := conn.WriteJSON(ev); err != nil {
			delete(boardHub.conns, conn)
			_ = conn.Close()
		}
	}
}

// HandleBoardWS keeps a client subscribed to board events until it hangs up
func HandleBoardWS(c *websocket.Conn) {
	boardHub.Lock()
	boardHub.conns[c] = struct{}{}
	boardHub.Unlock()

	defer func() {
		boardHub.Lock()
		delete(boardHub.conns, c)
		boardHub.Unlock()
		_ = c.Close()
	}()

	// Drain incoming frames; the stream is one-way
	for {
		if _, _, err := c.ReadMessage(); err != nil {
			log.Printf("board ws closed: %v", err)
			return
		}
	}
}
