// internal/session/registry.go
package session

import (
	"errors"
	"net"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"robot-bridge/internal/config"
	"robot-bridge/internal/robot"
)

// ErrInvalidAddress is returned when the robot address fails validation.
var ErrInvalidAddress = errors.New("invalid robot address")

// ClientChannel is the bidirectional message channel to one browser client.
// *websocket.Conn satisfies it.
type ClientChannel interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteJSON(v interface{}) error
	Close() error
}

// Session pairs one client channel with one robot controller for the lifetime
// of the channel. Connected mirrors the controller state as last observed by
// the session's own dispatch loop, which is the only goroutine mutating it.
type Session struct {
	ID        string
	Channel   ClientChannel
	Robot     *robot.Controller
	Connected bool
}

// Registry maps session ids to live sessions. It is the only structure shared
// across session goroutines; access goes through Connect, Get and Disconnect.
type Registry struct {
	sessions map[string]*Session
	mutex    sync.RWMutex
	cfg      *config.RobotConfig
	logger   *zap.Logger
}

// NewRegistry creates an empty session registry
func NewRegistry(cfg *config.RobotConfig, logger *zap.Logger) *Registry {
	return &Registry{
		sessions: make(map[string]*Session),
		cfg:      cfg,
		logger:   logger.With(zap.String("component", "session-registry")),
	}
}

// Connect validates the robot address and registers a new session under a
// fresh id. The robot link is not dialed here; that happens when the client
// sends a connect message.
func (r *Registry) Connect(channel ClientChannel, address string) (*Session, error) {
	if net.ParseIP(address) == nil {
		r.logger.Warn("Rejected session with invalid robot address",
			zap.String("address", address),
		)
		return nil, ErrInvalidAddress
	}

	sess := &Session{
		ID:      uuid.New().String(),
		Channel: channel,
		Robot:   robot.NewController(address, r.cfg, r.logger),
	}

	r.mutex.Lock()
	r.sessions[sess.ID] = sess
	r.mutex.Unlock()

	r.logger.Info("Session registered",
		zap.String("session_id", sess.ID),
		zap.String("robot_addr", sess.Robot.Addr()),
	)
	return sess, nil
}

// Get looks up a session by id
func (r *Registry) Get(id string) (*Session, bool) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	sess, ok := r.sessions[id]
	return sess, ok
}

// Disconnect removes the session and tears down its robot link. Calling it
// for an unknown id is a no-op.
func (r *Registry) Disconnect(id string) {
	r.mutex.Lock()
	sess, ok := r.sessions[id]
	if ok {
		delete(r.sessions, id)
	}
	r.mutex.Unlock()

	if !ok {
		return
	}

	sess.Robot.Disconnect()
	r.logger.Info("Session removed", zap.String("session_id", id))
}

// Count returns the number of live sessions
func (r *Registry) Count() int {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return len(r.sessions)
}
