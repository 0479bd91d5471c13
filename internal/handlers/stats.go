package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"randomchat/internal/matchengine"
)

// Stats reports the live matching state (spec's supplemented diagnostics
// surface, see SPEC_FULL.md): total connections, per-bucket queue depths,
// and how many users are currently paired. It reads straight from the
// Engine, never from the Redis stats sink, so its correctness never
// depends on Redis being reachable.
func Stats(engine *matchengine.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		snap := engine.Snapshot()
		c.JSON(http.StatusOK, gin.H{
			"connections":  snap.Connections,
			"paired":       snap.Paired,
			"queue_depths": snap.QueueDepths,
		})
	}
}
