package handlers

import (
	"log"

	websocketHub "github.com/backsoul/quizconsole/pkg/websocket"
	"github.com/fasthttp/websocket"
	"github.com/valyala/fasthttp"
)

// LiveHandler transmite los puntajes registrados a los visores WebSocket
type LiveHandler struct {
	hub *websocketHub.Hub
}

func NewLiveHandler(hub *websocketHub.Hub) *LiveHandler {
	return &LiveHandler{hub: hub}
}

var upgrader = websocket.FastHTTPUpgrader{
	CheckOrigin: func(ctx *fasthttp.RequestCtx) bool {
		return true
	},
}

// HandleWebSocket maneja GET /ws
func (h *LiveHandler) HandleWebSocket(ctx *fasthttp.RequestCtx) {
	err := upgrader.Upgrade(ctx, func(ws *websocket.Conn) {
		defer ws.Close()

		if !h.hub.Register(ws) {
			return
		}
		defer h.hub.Unregister(ws)

		// Los visores solo escuchan; leer sirve para detectar la desconexión
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				return
			}
		}
	})

	if err != nil {
		log.Printf("Error actualizando a WebSocket: %v", err)
	}
}
