package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/platefront/rms-backend/events"
	"github.com/platefront/rms-backend/utils"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type EventsController struct{}

func NewEventsController() *EventsController {
	return &EventsController{}
}

// Subscribe -> upgrade to websocket and stream ledger events until the
// client goes away.
func (ec *EventsController) Subscribe(c *gin.Context) {
	role := c.DefaultQuery("role", "staff")

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	events.RegisterClient(conn, role)

	go func() {
		defer events.UnregisterClient(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}
