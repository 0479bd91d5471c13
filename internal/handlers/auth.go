package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"randomchat/internal/apperr"
	"randomchat/internal/jwtauth"
)

// LoginRequest is the demo login body: this service never stores
// accounts (spec §1 out-of-scope), so it accepts a caller-supplied tier
// claim and signs it into a token the WebSocket handshake can present
// later. A real deployment swaps this handler for one that reads the
// tier from the actual subscription store.
type LoginRequest struct {
	UserID string `json:"user_id" binding:"required"`
	Tier   string `json:"tier"`
}

// LoginResponse is the login response.
type LoginResponse struct {
	Token string `json:"token"`
}

const tokenTTL = 24 * time.Hour

// Login issues a bearer token asserting the caller's tier.
func Login(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			writeError(c, apperr.New(apperr.ErrInvalidJSONBody))
			return
		}

		if req.Tier != "premium" {
			req.Tier = "free"
		}

		token, err := jwtauth.Issue(jwtSecret, req.UserID, req.Tier, tokenTTL)
		if err != nil {
			writeError(c, apperr.New(apperr.ErrUnknown))
			return
		}

		c.JSON(http.StatusOK, LoginResponse{Token: token})
	}
}

func writeError(c *gin.Context, err *apperr.CustomError) {
	c.JSON(err.Status, gin.H{"code": err.Code, "error": err.Message})
}
