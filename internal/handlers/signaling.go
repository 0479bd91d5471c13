package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"randomchat/internal/middleware"
	"randomchat/internal/transport"
)

// HandleSignaling upgrades the request to a WebSocket connection and hands
// it to the Transport Adapter. If a valid bearer token was presented
// (OptionalJWT populated the context), its tier claim is passed through so
// the Hub can override whatever tier the join-queue payload self-reports.
func HandleSignaling(hub *transport.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		tier, _ := middleware.TierFromContext(c)

		if err := hub.Accept(c.Writer, c.Request, tier); err != nil {
			c.AbortWithStatus(http.StatusBadRequest)
		}
	}
}
