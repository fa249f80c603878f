package controller

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/jackc/pgx/v5/pgxpool"

	cacheport "subdesk/internal/infrastructure/cache/port"
	queueport "subdesk/internal/infrastructure/queue/port"
	"subdesk/internal/infrastructure/realtime"
	chat "subdesk/internal/pkg/chat/application/domain"
	"subdesk/internal/pkg/chat/application/usecase"
	"subdesk/internal/pkg/chat/auth"
	repoAdapter "subdesk/internal/pkg/chat/persistence/repository/adapter"
	dirAdapter "subdesk/internal/repository/adapter"
)

// ChatSocketController handles the websocket endpoint for realtime chat.
// The handshake authenticates the user and attaches the session to the
// user's own room; sendMessage frames persist through the same use case as
// the REST path and are delivered to the receiver's room only.
type ChatSocketController struct {
	hub             *realtime.Hub
	verifier        *auth.Verifier
	q               queueport.Client
	sendMessageUC   *usecase.SendMessageUseCase
	inflightTimeout time.Duration
}

func NewChatSocketController(pool *pgxpool.Pool, hub *realtime.Hub, verifier *auth.Verifier, q queueport.Client, cache cacheport.Cache) *ChatSocketController {
	repo := repoAdapter.NewPgChatRepository(pool)
	dir := dirAdapter.NewPgDirectory(pool)
	return &ChatSocketController{
		hub:             hub,
		verifier:        verifier,
		q:               q,
		sendMessageUC:   usecase.NewSendMessageUseCase(repo, dir, cache),
		inflightTimeout: 5 * time.Second,
	}
}

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// The frontend and API share an origin in production; the gateway
		// terminates anything else before it reaches us.
		return true
	},
}

type inboundFrame struct {
	Event      string `json:"event"`
	UserID     string `json:"userId,omitempty"`
	ReceiverID string `json:"receiverId,omitempty"`
	Content    string `json:"content,omitempty"`
}

type errorFrame struct {
	Event string `json:"event"`
	Code  string `json:"code"`
	Error string `json:"error"`
}

type ackFrame struct {
	Event   string       `json:"event"`
	Message *messageJSON `json:"message,omitempty"`
}

const defaultReadTimeout = 60 * time.Second

// Handle upgrades HTTP connections to websocket and processes frames until
// the client disconnects.
func (ctl *ChatSocketController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := ctl.verifier.UserID(c.Request)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}

		ws, err := wsUpgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			// Upgrade already wrote the response; just log and return.
			log.Warningf("websocket upgrade for user %s: %v", userID, err)
			return
		}

		conn := realtime.NewConnection(userID, ws)
		ctl.hub.Attach(conn)
		defer func() {
			ctl.hub.Detach(conn)
			conn.Close(websocket.CloseNormalClosure, "session closed")
			log.Debugf("user %s disconnected", userID)
		}()

		log.Debugf("user %s connected", userID)

		ws.SetReadLimit(1 << 20) // 1MB payload cap
		_ = ws.SetReadDeadline(time.Now().Add(defaultReadTimeout))
		ws.SetPongHandler(func(string) error {
			return ws.SetReadDeadline(time.Now().Add(defaultReadTimeout))
		})

		if payload, err := json.Marshal(ackFrame{Event: "connected"}); err == nil {
			_ = conn.Send(payload)
		}

		for {
			_, data, err := ws.ReadMessage()
			if err != nil {
				if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived) ||
					errors.Is(err, websocket.ErrCloseSent) {
					return
				}
				ctl.replyError(conn, "read_error", "connection read failed")
				return
			}

			var frame inboundFrame
			if err := json.Unmarshal(data, &frame); err != nil {
				ctl.replyError(conn, "bad_request", "invalid payload")
				continue
			}

			switch frame.Event {
			case "join":
				ctl.handleJoin(conn, frame)
			case "sendMessage":
				ctl.handleSendMessage(c, conn, frame)
			default:
				ctl.replyError(conn, "unsupported_event", "unknown event")
			}
		}
	}
}

// handleJoin acknowledges subscription to the caller's own room. The room
// was already joined at attach time; a join frame naming any other user is
// rejected rather than trusted.
func (ctl *ChatSocketController) handleJoin(conn *realtime.Connection, frame inboundFrame) {
	if frame.UserID != "" && frame.UserID != conn.UserID {
		ctl.replyError(conn, "forbidden", "cannot join another user's room")
		return
	}
	if payload, err := json.Marshal(ackFrame{Event: "joined"}); err == nil {
		_ = conn.Send(payload)
	}
}

func (ctl *ChatSocketController) handleSendMessage(c *gin.Context, conn *realtime.Connection, frame inboundFrame) {
	if frame.ReceiverID == "" {
		ctl.replyError(conn, "bad_request", "receiverId is required")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), ctl.inflightTimeout)
	defer cancel()

	// Sender identity comes from the authenticated session, not the frame.
	msg, err := ctl.sendMessageUC.Execute(ctx, usecase.SendMessageInput{
		SenderID:   conn.UserID,
		ReceiverID: frame.ReceiverID,
		Content:    frame.Content,
	})
	if err != nil {
		ctl.handleUseCaseError(conn, err)
		return
	}

	deliverToReceiver(ctl.hub, ctl.q, frame.ReceiverID, *msg)

	payload := toMessageJSON(*msg)
	if b, err := json.Marshal(ackFrame{Event: "ack", Message: &payload}); err == nil {
		_ = conn.Send(b)
	}
}

func (ctl *ChatSocketController) handleUseCaseError(conn *realtime.Connection, err error) {
	switch {
	case errors.Is(err, usecase.ErrPersistence):
		log.Errorf("socket send for user %s: %v", conn.UserID, err)
		ctl.replyError(conn, "internal_error", "unexpected persistence error")
	case errors.Is(err, chat.ErrUnknownParticipant):
		ctl.replyError(conn, "not_found", "participant not found")
	case errors.Is(err, chat.ErrEmptyMessage):
		ctl.replyError(conn, "bad_request", "content must not be empty")
	default:
		ctl.replyError(conn, "bad_request", err.Error())
	}
}

func (ctl *ChatSocketController) replyError(conn *realtime.Connection, code string, message string) {
	frame := errorFrame{Event: "error", Code: code, Error: message}
	if payload, err := json.Marshal(frame); err == nil {
		_ = conn.Send(payload)
	}
}
