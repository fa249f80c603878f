package controller

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	logging "github.com/op/go-logging"

	chat "subdesk/internal/pkg/chat/application/domain"
	"subdesk/internal/pkg/chat/application/usecase"
	repository "subdesk/internal/pkg/chat/persistence/repository/port"
)

var log = logging.MustGetLogger("chat.http")

// messageJSON is the wire shape of a message, shared by the REST responses
// and the realtime frames.
type messageJSON struct {
	ID        string        `json:"id"`
	ChatID    string        `json:"chatId"`
	Sender    string        `json:"sender"`
	Content   string        `json:"content"`
	Timestamp time.Time     `json:"timestamp"`
	IsRead    bool          `json:"isRead"`
	ReadBy    []receiptJSON `json:"readBy"`
}

type receiptJSON struct {
	UserID string    `json:"userId"`
	ReadAt time.Time `json:"readAt"`
}

func toMessageJSON(m chat.Message) messageJSON {
	out := messageJSON{
		ID:        m.ID,
		ChatID:    m.ConversationID,
		Sender:    m.SenderID,
		Content:   m.Body,
		Timestamp: m.CreatedAt,
		IsRead:    m.Read,
		ReadBy:    make([]receiptJSON, 0, len(m.ReadBy)),
	}
	for _, r := range m.ReadBy {
		out.ReadBy = append(out.ReadBy, receiptJSON{UserID: r.UserID, ReadAt: r.ReadAt})
	}
	return out
}

// writeError maps use case failures onto the REST error taxonomy.
// Persistence detail stays in the server log; clients get a generic 500 body.
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, repository.ErrConversationNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "conversation not found"})
	case errors.Is(err, chat.ErrUnknownParticipant):
		c.JSON(http.StatusNotFound, gin.H{"error": "participant not found"})
	case errors.Is(err, usecase.ErrPersistence):
		log.Errorf("persistence failure: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	}
}
