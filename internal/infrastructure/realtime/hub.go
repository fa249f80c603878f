package realtime

import (
	"sync"

	logging "github.com/op/go-logging"
)

var log = logging.MustGetLogger("realtime")

// Hub coordinates websocket sessions and per-user rooms. Each user has one
// room named by their own id; delivering a message means emitting to the
// receiver's room and nobody else's.
type Hub struct {
	mu           sync.RWMutex
	sessions     map[string]*Connection            // sessionID -> connection
	userSessions map[string]string                 // userID -> sessionID
	rooms        map[string]map[string]*Connection // room -> sessionID -> connection
	sessionRooms map[string]map[string]struct{}    // sessionID -> set of rooms
}

// NewHub constructs an initialized Hub.
func NewHub() *Hub {
	return &Hub{
		sessions:     make(map[string]*Connection),
		userSessions: make(map[string]string),
		rooms:        make(map[string]map[string]*Connection),
		sessionRooms: make(map[string]map[string]struct{}),
	}
}

// Attach registers a connection for the given user and subscribes it to the
// user's own room. If a previous session exists it is removed and closed
// after the swap to enforce one active socket per user.
func (h *Hub) Attach(conn *Connection) {
	var previous *Connection

	h.mu.Lock()
	if existingID, ok := h.userSessions[conn.UserID]; ok {
		if existing := h.sessions[existingID]; existing != nil {
			previous = existing
			h.detachLocked(existingID)
		}
	}

	h.sessions[conn.ID] = conn
	h.userSessions[conn.UserID] = conn.ID
	h.sessionRooms[conn.ID] = make(map[string]struct{})
	h.joinLocked(conn.UserID, conn)
	h.mu.Unlock()

	conn.Start()
	log.Debugf("session %s attached for user %s", conn.ID, conn.UserID)

	if previous != nil {
		previous.Close(4001, "session replaced")
	}
}

// Detach removes a connection if it is still tracked.
func (h *Hub) Detach(conn *Connection) {
	h.mu.Lock()
	h.detachLocked(conn.ID)
	h.mu.Unlock()
	log.Debugf("session %s detached for user %s", conn.ID, conn.UserID)
}

// Join subscribes the connection to a room.
func (h *Hub) Join(room string, conn *Connection) {
	h.mu.Lock()
	if _, ok := h.sessions[conn.ID]; ok {
		h.joinLocked(room, conn)
	}
	h.mu.Unlock()
}

// Leave removes the connection from the room.
func (h *Hub) Leave(room string, conn *Connection) {
	h.mu.Lock()
	h.leaveLocked(room, conn.ID)
	h.mu.Unlock()
}

// Emit writes payload to every member of the room and returns the number of
// sessions that accepted the write. Zero means nobody is listening.
// Members are snapshotted under the lock and written to after releasing it,
// so a slow client disconnecting mid-send cannot stall Attach or Detach.
func (h *Hub) Emit(room string, payload []byte) int {
	h.mu.RLock()
	members := h.rooms[room]
	conns := make([]*Connection, 0, len(members))
	for _, conn := range members {
		conns = append(conns, conn)
	}
	h.mu.RUnlock()

	delivered := 0
	for _, conn := range conns {
		if err := conn.Send(payload); err == nil {
			delivered++
		}
	}
	return delivered
}

// Present reports whether the user currently has an attached session.
func (h *Hub) Present(userID string) bool {
	h.mu.RLock()
	_, ok := h.userSessions[userID]
	h.mu.RUnlock()
	return ok
}

// Close terminates all tracked connections and clears hub state.
func (h *Hub) Close() {
	h.mu.Lock()
	sessions := make([]*Connection, 0, len(h.sessions))
	for _, conn := range h.sessions {
		sessions = append(sessions, conn)
	}
	h.sessions = make(map[string]*Connection)
	h.userSessions = make(map[string]string)
	h.rooms = make(map[string]map[string]*Connection)
	h.sessionRooms = make(map[string]map[string]struct{})
	h.mu.Unlock()

	for _, conn := range sessions {
		conn.Close(1001, "hub shutdown")
	}
}

func (h *Hub) joinLocked(room string, conn *Connection) {
	members := h.rooms[room]
	if members == nil {
		members = make(map[string]*Connection)
		h.rooms[room] = members
	}
	members[conn.ID] = conn

	memberships := h.sessionRooms[conn.ID]
	if memberships == nil {
		memberships = make(map[string]struct{})
		h.sessionRooms[conn.ID] = memberships
	}
	memberships[room] = struct{}{}
}

func (h *Hub) detachLocked(sessionID string) {
	conn, ok := h.sessions[sessionID]
	if !ok {
		return
	}
	delete(h.sessions, sessionID)

	if current, ok := h.userSessions[conn.UserID]; ok && current == sessionID {
		delete(h.userSessions, conn.UserID)
	}

	for room := range h.sessionRooms[sessionID] {
		h.leaveLocked(room, sessionID)
	}
	delete(h.sessionRooms, sessionID)
}

func (h *Hub) leaveLocked(room string, sessionID string) {
	if sessionID == "" {
		return
	}
	members := h.rooms[room]
	if members == nil {
		return
	}
	delete(members, sessionID)
	if len(members) == 0 {
		delete(h.rooms, room)
	}
	if memberships, ok := h.sessionRooms[sessionID]; ok {
		delete(memberships, room)
		if len(memberships) == 0 {
			delete(h.sessionRooms, sessionID)
		}
	}
}
