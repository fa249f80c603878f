package v1

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	cacheport "subdesk/internal/infrastructure/cache/port"
	qport "subdesk/internal/infrastructure/queue/port"
	"subdesk/internal/infrastructure/realtime"
	"subdesk/internal/pkg/chat/auth"
	httpHandler "subdesk/internal/pkg/chat/presentation/http"
)

// RegisterRoutes mounts all version 1 API routes under /api/v1
func RegisterRoutes(r *gin.Engine, pool *pgxpool.Pool, hub *realtime.Hub, verifier *auth.Verifier, q qport.Client, cache cacheport.Cache) {
	v1 := r.Group("/api/v1")
	httpHandler.RegisterRoutes(v1, pool, hub, verifier, q, cache)
}
