package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	cacheport "subdesk/internal/infrastructure/cache/port"
	chat "subdesk/internal/pkg/chat/application/domain"
	repository "subdesk/internal/pkg/chat/persistence/repository/port"
	directory "subdesk/internal/repository/port"
)

// fakeChatRepo is an in-memory ChatRepository with the same semantics the
// Postgres adapter guarantees: one conversation per pair, ascending history,
// idempotent mark-read.
type fakeChatRepo struct {
	mu     sync.Mutex
	convs  map[string]*chat.Conversation
	byPair map[string]string
	msgs   map[string][]*chat.Message
	nextID int

	failWith error // when set, every call fails
}

func newFakeChatRepo() *fakeChatRepo {
	return &fakeChatRepo{
		convs:  make(map[string]*chat.Conversation),
		byPair: make(map[string]string),
		msgs:   make(map[string][]*chat.Message),
	}
}

var _ repository.ChatRepository = (*fakeChatRepo)(nil)

func (f *fakeChatRepo) id(prefix string) string {
	f.nextID++
	return fmt.Sprintf("%s-%d", prefix, f.nextID)
}

func (f *fakeChatRepo) FindOrCreateConversation(_ context.Context, a, b chat.Member) (chat.Conversation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return chat.Conversation{}, f.failWith
	}

	key := chat.PairKey(a.ID, b.ID)
	if id, ok := f.byPair[key]; ok {
		return *f.convs[id], nil
	}
	conv := &chat.Conversation{
		ID:        f.id("conv"),
		CreatedAt: time.Now().UTC(),
		Members:   []chat.Member{a, b},
	}
	f.convs[conv.ID] = conv
	f.byPair[key] = conv.ID
	return *conv, nil
}

func (f *fakeChatRepo) GetConversation(_ context.Context, conversationID string) (chat.Conversation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return chat.Conversation{}, f.failWith
	}
	conv, ok := f.convs[conversationID]
	if !ok {
		return chat.Conversation{}, repository.ErrConversationNotFound
	}
	return *conv, nil
}

func (f *fakeChatRepo) ListConversationsByMember(_ context.Context, userID string) ([]chat.Conversation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return nil, f.failWith
	}
	var out []chat.Conversation
	for _, conv := range f.convs {
		if conv.HasMember(userID) {
			out = append(out, *conv)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeChatRepo) SaveMessage(_ context.Context, m chat.Message) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return "", f.failWith
	}
	m.ID = f.id("msg")
	stored := m
	f.msgs[m.ConversationID] = append(f.msgs[m.ConversationID], &stored)
	return m.ID, nil
}

func (f *fakeChatRepo) ListMessages(_ context.Context, conversationID string, limit, offset int) ([]chat.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return nil, f.failWith
	}
	msgs := f.msgs[conversationID]
	sorted := make([]chat.Message, 0, len(msgs))
	for _, m := range msgs {
		sorted = append(sorted, *m)
	}
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].CreatedAt.Before(sorted[j].CreatedAt) })

	if offset < 0 {
		offset = 0
	}
	if offset >= len(sorted) {
		return nil, nil
	}
	end := len(sorted)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return sorted[offset:end], nil
}

func (f *fakeChatRepo) MarkConversationRead(_ context.Context, conversationID, readerID string, at time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return 0, f.failWith
	}
	var n int64
	for _, m := range f.msgs[conversationID] {
		if m.SenderID != readerID && !m.Read {
			m.Read = true
			m.ReadBy = append(m.ReadBy, chat.Receipt{UserID: readerID, ReadAt: at})
			n++
		}
	}
	return n, nil
}

func (f *fakeChatRepo) CountUnread(_ context.Context, conversationID, userID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return 0, f.failWith
	}
	var n int64
	for _, m := range f.msgs[conversationID] {
		if m.SenderID != userID && !m.Read {
			n++
		}
	}
	return n, nil
}

func (f *fakeChatRepo) conversationCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.convs)
}

// fakeDirectory resolves participants from a fixed map.
type fakeDirectory struct {
	participants map[string]directory.Participant
}

func newFakeDirectory(ps ...directory.Participant) *fakeDirectory {
	m := make(map[string]directory.Participant, len(ps))
	for _, p := range ps {
		m[p.ID] = p
	}
	return &fakeDirectory{participants: m}
}

var _ directory.Directory = (*fakeDirectory)(nil)

func (f *fakeDirectory) FindParticipant(_ context.Context, id string) (directory.Participant, error) {
	p, ok := f.participants[id]
	if !ok {
		return directory.Participant{}, directory.ErrParticipantNotFound
	}
	return p, nil
}

// fakeCache is an in-memory Cache ignoring TTLs.
type fakeCache struct {
	mu   sync.Mutex
	data map[string]string
	gets int
	sets int
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: make(map[string]string)}
}

var _ cacheport.Cache = (*fakeCache)(nil)

func (f *fakeCache) Get(_ context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gets++
	v, ok := f.data[key]
	if !ok {
		return "", cacheport.ErrMiss
	}
	return v, nil
}

func (f *fakeCache) Set(_ context.Context, key, value string, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sets++
	f.data[key] = value
	return nil
}

func (f *fakeCache) Del(_ context.Context, keys ...string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, k := range keys {
		if _, ok := f.data[k]; ok {
			delete(f.data, k)
			n++
		}
	}
	return n, nil
}

func (f *fakeCache) Ping(context.Context) error { return nil }
func (f *fakeCache) Close() error               { return nil }

// directory fixtures shared by the use case tests
func candidate(id, name string) directory.Participant {
	return directory.Participant{ID: id, Kind: chat.MemberKindUser, DisplayName: name}
}

func school(id, name string) directory.Participant {
	return directory.Participant{ID: id, Kind: chat.MemberKindSchool, DisplayName: name}
}
