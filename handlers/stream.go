package handlers

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/coder/websocket"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"go-medalert/hub"
)

type streamMessage struct {
	Action   string   `json:"action"`
	AlertIDs []string `json:"alert_ids"`
}

// StreamMissions upgrades the connection and relays mission updates for
// the alerts the client subscribes to. Messages: {"action":"subscribe",
// "alert_ids":[...]} and the matching "unsubscribe".
func StreamMissions(c *gin.Context, h *hub.Hub) {
	conn, err := websocket.Accept(c.Writer, c.Request, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		log.Printf("websocket accept failed: %v", err)
		return
	}

	client := hub.NewClient(uuid.New().String(), 256)
	h.Register(client)

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	go writeLoop(ctx, conn, client)
	readLoop(ctx, conn, client, h)
}

func readLoop(ctx context.Context, conn *websocket.Conn, client *hub.Client, h *hub.Hub) {
	defer func() {
		h.Unregister(client)
		conn.Close(websocket.StatusNormalClosure, "")
	}()

	for {
		msgType, data, err := conn.Read(ctx)
		if err != nil {
			if websocket.CloseStatus(err) != websocket.StatusNormalClosure {
				log.Printf("websocket read, client %s: %v", client.ID, err)
			}
			return
		}
		if msgType != websocket.MessageText {
			continue
		}

		var msg streamMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			continue
		}
		switch msg.Action {
		case "subscribe":
			if len(msg.AlertIDs) > 0 {
				h.Subscribe(client, msg.AlertIDs)
			}
		case "unsubscribe":
			if len(msg.AlertIDs) > 0 {
				h.Unsubscribe(client, msg.AlertIDs)
			}
		}
	}
}

func writeLoop(ctx context.Context, conn *websocket.Conn, client *hub.Client) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case msg, ok := <-client.Send:
			if !ok {
				return
			}
			writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			err := conn.Write(writeCtx, websocket.MessageText, msg)
			cancel()
			if err != nil {
				return
			}

		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			err := conn.Ping(pingCtx)
			cancel()
			if err != nil {
				return
			}
		}
	}
}
