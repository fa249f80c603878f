package task

import (
	"context"
	"encoding/json"
	"time"

	logging "github.com/op/go-logging"

	"github.com/jackc/pgx/v5/pgxpool"

	cacheport "subdesk/internal/infrastructure/cache/port"
	qport "subdesk/internal/infrastructure/queue/port"
	"subdesk/internal/pkg/chat/application/usecase"
	repoAdapter "subdesk/internal/pkg/chat/persistence/repository/adapter"
)

var log = logging.MustGetLogger("chat.task")

// NotifyOfflineTaskType is the queue task name for a message delivered while
// the receiver had no live socket.
const NotifyOfflineTaskType = "chat:notify_offline"

// NotifyOfflinePayload is the JSON payload transported via the queue.
type NotifyOfflinePayload struct {
	ConversationID string `json:"conversationId"`
	ReceiverID     string `json:"receiverId"`
	MessageID      string `json:"messageId"`
}

// RegisterNotifyOfflineTask binds the task handler to the provided server.
// The handler recomputes the receiver's unread count (warming the cache the
// badge endpoint reads) and records the pending delivery in the log.
// Handlers must be idempotent; recomputing a counter trivially is.
func RegisterNotifyOfflineTask(srv qport.Server, pool *pgxpool.Pool, cache cacheport.Cache) {
	srv.Register(NotifyOfflineTaskType, func(ctx context.Context, t qport.Task) error {
		var p NotifyOfflinePayload
		if err := json.Unmarshal(t.Payload, &p); err != nil {
			// malformed payload: do not retry indefinitely
			return err
		}

		uc := usecase.NewUnreadCountUseCase(repoAdapter.NewPgChatRepository(pool), cache)

		ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()

		n, err := uc.Execute(ctx, usecase.UnreadCountInput{
			ConversationID: p.ConversationID,
			UserID:         p.ReceiverID,
		})
		if err != nil {
			return err
		}

		log.Infof("offline delivery pending: user=%s conversation=%s unread=%d", p.ReceiverID, p.ConversationID, n)
		return nil
	})
}
