package controller

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"subdesk/internal/pkg/chat/application/usecase"
	repoAdapter "subdesk/internal/pkg/chat/persistence/repository/adapter"
	dirAdapter "subdesk/internal/repository/adapter"
)

// ListConversationsController handles the conversation-list endpoint
// (one controller per endpoint).
type ListConversationsController struct {
	UC *usecase.ListConversationsUseCase
}

func NewListConversationsController(pool *pgxpool.Pool) *ListConversationsController {
	repo := repoAdapter.NewPgChatRepository(pool)
	dir := dirAdapter.NewPgDirectory(pool)
	return &ListConversationsController{UC: usecase.NewListConversationsUseCase(repo, dir)}
}

func (h *ListConversationsController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.Param("userId")
		if userID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "userId is required"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		summaries, err := h.UC.Execute(ctx, usecase.ListConversationsInput{UserID: userID})
		if err != nil {
			writeError(c, err)
			return
		}

		out := make([]gin.H, 0, len(summaries))
		for _, s := range summaries {
			members := make([]gin.H, 0, len(s.Conversation.Members))
			for _, m := range s.Conversation.Members {
				members = append(members, gin.H{"id": m.ID, "kind": m.Kind})
			}
			out = append(out, gin.H{
				"id":        s.Conversation.ID,
				"createdAt": s.Conversation.CreatedAt,
				"members":   members,
				"peer": gin.H{
					"id":          s.Peer.ID,
					"kind":        s.Peer.Kind,
					"displayName": s.Peer.DisplayName,
				},
			})
		}

		c.JSON(http.StatusOK, gin.H{"conversations": out, "count": len(out)})
	}
}
