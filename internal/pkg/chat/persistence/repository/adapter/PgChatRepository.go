package adapter

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/lo"

	chat "subdesk/internal/pkg/chat/application/domain"
	repository "subdesk/internal/pkg/chat/persistence/repository/port"
)

type PgChatRepository struct {
	pool *pgxpool.Pool
}

func NewPgChatRepository(pool *pgxpool.Pool) *PgChatRepository {
	return &PgChatRepository{pool: pool}
}

var _ repository.ChatRepository = (*PgChatRepository)(nil)

// FindOrCreateConversation upserts on the derived pair key so two racing
// first messages between the same pair converge on a single conversation.
// The conversation and member rows commit together; a failure mid-way rolls
// back rather than leaving a memberless conversation behind.
func (r *PgChatRepository) FindOrCreateConversation(ctx context.Context, a, b chat.Member) (chat.Conversation, error) {
	if r == nil || r.pool == nil {
		return chat.Conversation{}, errors.New("PgChatRepository: nil pool")
	}

	pairKey := chat.PairKey(a.ID, b.ID)
	now := time.Now().UTC()

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return chat.Conversation{}, err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO chat.conversation (pair_key, created_at)
		VALUES ($1, $2)
		ON CONFLICT (pair_key) DO NOTHING
	`, pairKey, now)
	if err != nil {
		return chat.Conversation{}, err
	}

	var conv chat.Conversation
	err = tx.QueryRow(ctx, `
		SELECT id::text, created_at FROM chat.conversation WHERE pair_key = $1
	`, pairKey).Scan(&conv.ID, &conv.CreatedAt)
	if err != nil {
		return chat.Conversation{}, err
	}

	for _, m := range []chat.Member{a, b} {
		_, err = tx.Exec(ctx, `
			INSERT INTO chat.member (conversation_id, user_id, kind)
			VALUES ($1::uuid, $2, $3)
			ON CONFLICT (conversation_id, user_id) DO NOTHING
		`, conv.ID, m.ID, string(m.Kind))
		if err != nil {
			return chat.Conversation{}, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return chat.Conversation{}, err
	}

	conv.Members = []chat.Member{a, b}
	return conv, nil
}

func (r *PgChatRepository) GetConversation(ctx context.Context, conversationID string) (chat.Conversation, error) {
	if r == nil || r.pool == nil {
		return chat.Conversation{}, errors.New("PgChatRepository: nil pool")
	}

	var conv chat.Conversation
	err := r.pool.QueryRow(ctx, `
		SELECT id::text, created_at FROM chat.conversation WHERE id = $1::uuid
	`, conversationID).Scan(&conv.ID, &conv.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return chat.Conversation{}, repository.ErrConversationNotFound
	}
	if err != nil {
		return chat.Conversation{}, err
	}

	rows, err := r.pool.Query(ctx, `
		SELECT user_id, kind FROM chat.member WHERE conversation_id = $1::uuid
	`, conversationID)
	if err != nil {
		return chat.Conversation{}, err
	}
	defer rows.Close()

	for rows.Next() {
		var m chat.Member
		var kind string
		if err := rows.Scan(&m.ID, &kind); err != nil {
			return chat.Conversation{}, err
		}
		m.Kind = chat.MemberKind(kind)
		conv.Members = append(conv.Members, m)
	}
	if rows.Err() != nil {
		return chat.Conversation{}, rows.Err()
	}
	return conv, nil
}

func (r *PgChatRepository) ListConversationsByMember(ctx context.Context, userID string) ([]chat.Conversation, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("PgChatRepository: nil pool")
	}

	rows, err := r.pool.Query(ctx, `
		SELECT c.id::text, c.created_at, m.user_id, m.kind
		FROM chat.conversation c
		JOIN chat.member me ON me.conversation_id = c.id AND me.user_id = $1
		JOIN chat.member m  ON m.conversation_id = c.id
		ORDER BY c.created_at DESC, c.id, m.user_id
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var convs []chat.Conversation
	index := map[string]int{}
	for rows.Next() {
		var (
			id        string
			createdAt time.Time
			m         chat.Member
			kind      string
		)
		if err := rows.Scan(&id, &createdAt, &m.ID, &kind); err != nil {
			return nil, err
		}
		m.Kind = chat.MemberKind(kind)

		i, ok := index[id]
		if !ok {
			convs = append(convs, chat.Conversation{ID: id, CreatedAt: createdAt})
			i = len(convs) - 1
			index[id] = i
		}
		convs[i].Members = append(convs[i].Members, m)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return convs, nil
}

func (r *PgChatRepository) SaveMessage(ctx context.Context, m chat.Message) (string, error) {
	if r == nil || r.pool == nil {
		return "", errors.New("PgChatRepository: nil pool")
	}
	var id string
	err := r.pool.QueryRow(ctx, `
		INSERT INTO chat.message (conversation_id, sender_id, body, created_at, is_read)
		VALUES ($1::uuid, $2, $3, $4, $5)
		RETURNING id::text
	`, m.ConversationID, m.SenderID, m.Body, m.CreatedAt, m.Read).Scan(&id)
	return id, err
}

func (r *PgChatRepository) ListMessages(ctx context.Context, conversationID string, limit, offset int) ([]chat.Message, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("PgChatRepository: nil pool")
	}
	if limit < 0 {
		limit = 0
	}
	if offset < 0 {
		offset = 0
	}

	// LIMIT NULL is no limit; zero requests the full history
	rows, err := r.pool.Query(ctx, `
		SELECT id::text, conversation_id::text, sender_id, body, created_at, is_read
		FROM chat.message
		WHERE conversation_id = $1::uuid
		ORDER BY created_at ASC, id
		LIMIT NULLIF($2, 0) OFFSET $3
	`, conversationID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var msgs []chat.Message
	for rows.Next() {
		var msg chat.Message
		if err := rows.Scan(&msg.ID, &msg.ConversationID, &msg.SenderID, &msg.Body, &msg.CreatedAt, &msg.Read); err != nil {
			return nil, err
		}
		msgs = append(msgs, msg)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	if len(msgs) == 0 {
		return msgs, nil
	}

	ids := lo.Map(msgs, func(m chat.Message, _ int) string { return m.ID })
	receiptRows, err := r.pool.Query(ctx, `
		SELECT message_id::text, user_id, read_at
		FROM chat.receipt
		WHERE message_id = ANY($1::uuid[])
		ORDER BY read_at ASC
	`, ids)
	if err != nil {
		return nil, err
	}
	defer receiptRows.Close()

	byID := map[string]int{}
	for i, m := range msgs {
		byID[m.ID] = i
	}
	for receiptRows.Next() {
		var (
			msgID string
			rc    chat.Receipt
		)
		if err := receiptRows.Scan(&msgID, &rc.UserID, &rc.ReadAt); err != nil {
			return nil, err
		}
		if i, ok := byID[msgID]; ok {
			msgs[i].ReadBy = append(msgs[i].ReadBy, rc)
		}
	}
	if receiptRows.Err() != nil {
		return nil, receiptRows.Err()
	}
	return msgs, nil
}

// MarkConversationRead flips unread peer messages and records receipts in a
// single statement, so repeated calls see nothing left to update.
func (r *PgChatRepository) MarkConversationRead(ctx context.Context, conversationID, readerID string, at time.Time) (int64, error) {
	if r == nil || r.pool == nil {
		return 0, errors.New("PgChatRepository: nil pool")
	}
	ct, err := r.pool.Exec(ctx, `
		WITH flipped AS (
			UPDATE chat.message
			SET is_read = TRUE
			WHERE conversation_id = $1::uuid
			  AND sender_id <> $2
			  AND is_read = FALSE
			RETURNING id
		)
		INSERT INTO chat.receipt (message_id, user_id, read_at)
		SELECT id, $2, $3 FROM flipped
		ON CONFLICT (message_id, user_id) DO NOTHING
	`, conversationID, readerID, at)
	if err != nil {
		return 0, err
	}
	return ct.RowsAffected(), nil
}

func (r *PgChatRepository) CountUnread(ctx context.Context, conversationID, userID string) (int64, error) {
	if r == nil || r.pool == nil {
		return 0, errors.New("PgChatRepository: nil pool")
	}
	var n int64
	err := r.pool.QueryRow(ctx, `
		SELECT count(*)
		FROM chat.message
		WHERE conversation_id = $1::uuid
		  AND sender_id <> $2
		  AND is_read = FALSE
	`, conversationID, userID).Scan(&n)
	return n, err
}
