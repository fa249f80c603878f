package http

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	cacheport "subdesk/internal/infrastructure/cache/port"
	qport "subdesk/internal/infrastructure/queue/port"
	"subdesk/internal/infrastructure/realtime"
	"subdesk/internal/pkg/chat/auth"
	"subdesk/internal/pkg/chat/presentation/controller"
)

// RegisterRoutes registers chat-related HTTP endpoints under the given router group.
// It constructs per-endpoint controllers and binds them directly to routes.
func RegisterRoutes(g *gin.RouterGroup, pool *pgxpool.Pool, hub *realtime.Hub, verifier *auth.Verifier, q qport.Client, cache cacheport.Cache) {
	listConvCtl := controller.NewListConversationsController(pool)
	sendMsgCtl := controller.NewSendMessageController(pool, hub, q, cache)
	getMsgCtl := controller.NewGetMessageController(pool)
	markReadCtl := controller.NewMarkReadController(pool, cache)
	unreadCtl := controller.NewUnreadCountController(pool, cache)
	socketCtl := controller.NewChatSocketController(pool, hub, verifier, q, cache)

	// GET /api/v1/conversations/:userId -> list a user's conversations
	g.GET("/conversations/:userId", listConvCtl.Handle())

	// POST /api/v1/messages -> send a message (REST fallback path)
	g.POST("/messages", sendMsgCtl.Handle())

	// GET /api/v1/messages/:chatId -> fetch history, ascending time
	g.GET("/messages/:chatId", getMsgCtl.Handle())

	// PUT /api/v1/messages/mark-read -> mark conversation read for a user
	g.PUT("/messages/mark-read", markReadCtl.Handle())

	// GET /api/v1/messages/unread/:chatId/:userId -> unread count
	g.GET("/messages/unread/:chatId/:userId", unreadCtl.Handle())

	// GET /api/v1/chat/ws -> websocket endpoint for realtime chat
	g.GET("/chat/ws", socketCtl.Handle())
}
