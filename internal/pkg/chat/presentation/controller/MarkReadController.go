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

// MarkReadController handles the mark-read endpoint (one controller per endpoint).
type MarkReadController struct {
	UC *usecase.MarkReadUseCase
}

func NewMarkReadController(pool *pgxpool.Pool, cache cacheport.Cache) *MarkReadController {
	repo := repoAdapter.NewPgChatRepository(pool)
	return &MarkReadController{UC: usecase.NewMarkReadUseCase(repo, cache)}
}

type markReadRequest struct {
	ChatID string `json:"chatId" binding:"required"`
	UserID string `json:"userId" binding:"required"`
}

func (h *MarkReadController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req markReadRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		n, err := h.UC.Execute(ctx, usecase.MarkReadInput{ConversationID: req.ChatID, UserID: req.UserID})
		if err != nil {
			writeError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"chatId": req.ChatID, "userId": req.UserID, "updated": n})
	}
}
