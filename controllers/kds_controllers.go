package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/yeremiapane/restaurant-site/kds"
	"github.com/yeremiapane/restaurant-site/middlewares"
	"github.com/yeremiapane/restaurant-site/services"
	"github.com/yeremiapane/restaurant-site/utils"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type LiveController struct {
	Auth *services.AuthService
	Hub  *kds.Hub
}

func NewLiveController(auth *services.AuthService, hub *kds.Hub) *LiveController {
	return &LiveController{Auth: auth, Hub: hub}
}

// KDSHandler -> staff websocket. The connection keeps its own session state
// and is closed when the admin signs out or loses admin rights.
func (lc *LiveController) KDSHandler(c *gin.Context) {
	userID, ok := middlewares.CurrentUserID(c)
	if !ok {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	state := services.NewSessionState(lc.Auth)
	if snap := state.Load(c.Request.Context(), userID); !snap.IsAdmin {
		c.AbortWithStatus(http.StatusForbidden)
		return
	}

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		utils.ErrorLogger.Errorf("Error upgrading websocket: %v", err)
		return
	}

	client := lc.Hub.Register(ws, userID, "admin")
	unbind := state.Bind(c.Request.Context(), lc.Auth, userID, func(event services.AuthEvent, snap services.SessionSnapshot) {
		if err := client.Send(kds.Message{Event: kds.EventSessionChanged, Data: gin.H{"event": event, "session": snap}}); err != nil {
			utils.ErrorLogger.Errorf("Error sending session change to user %d: %v", userID, err)
		}
		if !snap.IsAdmin {
			lc.Hub.Unregister(client)
		}
	})
	defer unbind()

	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			break
		}
	}

	lc.Hub.Unregister(client)
}
