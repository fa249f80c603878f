package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	cacheport "subdesk/internal/infrastructure/cache/port"
	queueport "subdesk/internal/infrastructure/queue/port"
	"subdesk/internal/infrastructure/realtime"
	chat "subdesk/internal/pkg/chat/application/domain"
	"subdesk/internal/pkg/chat/application/task"
	"subdesk/internal/pkg/chat/application/usecase"
	repoAdapter "subdesk/internal/pkg/chat/persistence/repository/adapter"
	dirAdapter "subdesk/internal/repository/adapter"
)

// SendMessageController handles the REST send endpoint: the fallback path
// used when the realtime channel is unavailable. It persists the message,
// pushes it to the receiver's room when a socket is attached, and otherwise
// enqueues an offline notification.
type SendMessageController struct {
	UC  *usecase.SendMessageUseCase
	Hub *realtime.Hub
	Q   queueport.Client // optional
}

func NewSendMessageController(pool *pgxpool.Pool, hub *realtime.Hub, q queueport.Client, cache cacheport.Cache) *SendMessageController {
	repo := repoAdapter.NewPgChatRepository(pool)
	dir := dirAdapter.NewPgDirectory(pool)
	return &SendMessageController{
		UC:  usecase.NewSendMessageUseCase(repo, dir, cache),
		Hub: hub,
		Q:   q,
	}
}

// sendMessageRequest is the DTO for the HTTP request body.
// The REST path carries the sender id in the body; the frontend sends it
// alongside its session cookie. The realtime path derives it from the token.
type sendMessageRequest struct {
	SenderID   string `json:"senderId" binding:"required"`
	ReceiverID string `json:"receiverId" binding:"required"`
	Content    string `json:"content" binding:"required"`
}

func (h *SendMessageController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req sendMessageRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		msg, err := h.UC.Execute(ctx, usecase.SendMessageInput{
			SenderID:   req.SenderID,
			ReceiverID: req.ReceiverID,
			Content:    req.Content,
		})
		if err != nil {
			writeError(c, err)
			return
		}

		deliverToReceiver(h.Hub, h.Q, req.ReceiverID, *msg)

		c.JSON(http.StatusCreated, toMessageJSON(*msg))
	}
}

// deliverToReceiver emits the receiveMessage event to the receiver's room
// only; the sender renders its own copy optimistically. A receiver with no
// attached socket gets an offline-notification task instead.
func deliverToReceiver(hub *realtime.Hub, q queueport.Client, receiverID string, msg chat.Message) {
	out := gin.H{"event": "receiveMessage", "message": toMessageJSON(msg)}
	payload, err := json.Marshal(out)
	if err != nil {
		log.Errorf("encode receiveMessage: %v", err)
		return
	}

	if hub.Emit(receiverID, payload) > 0 {
		return
	}

	if q == nil {
		return
	}
	p := task.NotifyOfflinePayload{
		ConversationID: msg.ConversationID,
		ReceiverID:     receiverID,
		MessageID:      msg.ID,
	}
	b, err := json.Marshal(p)
	if err != nil {
		log.Errorf("encode offline notification: %v", err)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := q.Enqueue(ctx, queueport.Task{Type: task.NotifyOfflineTaskType, Payload: b},
		queueport.EnqueueOption{Queue: "chat", MaxRetry: 5}); err != nil {
		log.Warningf("enqueue offline notification for %s: %v", receiverID, err)
	}
}
