package controller

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	cacheport "subdesk/internal/infrastructure/cache/port"
	"subdesk/internal/pkg/chat/application/usecase"
	repoAdapter "subdesk/internal/pkg/chat/persistence/repository/adapter"
)

// UnreadCountController handles the unread-badge endpoint (one controller per endpoint).
type UnreadCountController struct {
	UC *usecase.UnreadCountUseCase
}

func NewUnreadCountController(pool *pgxpool.Pool, cache cacheport.Cache) *UnreadCountController {
	repo := repoAdapter.NewPgChatRepository(pool)
	return &UnreadCountController{UC: usecase.NewUnreadCountUseCase(repo, cache)}
}

func (h *UnreadCountController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		chatID := c.Param("chatId")
		userID := c.Param("userId")
		if chatID == "" || userID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "chatId and userId are required"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		n, err := h.UC.Execute(ctx, usecase.UnreadCountInput{ConversationID: chatID, UserID: userID})
		if err != nil {
			writeError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"chatId": chatID, "userId": userID, "unread": n})
	}
}
