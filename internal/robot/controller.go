// internal/robot/controller.go
package robot

import (
	"context"
	"errors"
	"net"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"robot-bridge/internal/config"
)

// QuitCommand is sent to the robot before closing the link.
const QuitCommand byte = 'Q'

// validCommands is the single-byte command alphabet the robot understands.
var validCommands = map[byte]bool{
	'U': true, 'D': true, 'L': true, 'R': true,
	'W': true, 'S': true, 'H': true, 'Q': true,
}

// ValidCommand reports whether cmd is a single byte from the command alphabet.
func ValidCommand(cmd string) bool {
	return len(cmd) == 1 && validCommands[cmd[0]]
}

// Controller owns the TCP link to one robot. Commands are single bytes,
// fire-and-forget; the robot never writes back on this link.
type Controller struct {
	addr           string
	conn           net.Conn
	connected      bool
	lastCommandAt  time.Time
	connectTimeout time.Duration
	cooldown       time.Duration
	healthTimeout  time.Duration
	mutex          sync.Mutex
	logger         *zap.Logger
}

// NewController creates a controller for the given robot address. The link is
// not dialed until Connect is called. An address without a port gets the
// configured default port.
func NewController(addr string, cfg *config.RobotConfig, logger *zap.Logger) *Controller {
	if _, _, err := net.SplitHostPort(addr); err != nil {
		addr = net.JoinHostPort(addr, strconv.Itoa(cfg.DefaultPort))
	}

	return &Controller{
		addr:           addr,
		connectTimeout: cfg.ConnectTimeout,
		cooldown:       cfg.CommandCooldown,
		healthTimeout:  cfg.HealthCheckTimeout,
		logger: logger.With(
			zap.String("component", "robot"),
			zap.String("addr", addr),
		),
	}
}

// Addr returns the resolved robot address.
func (c *Controller) Addr() string {
	return c.addr
}

// Connect establishes the TCP connection to the robot. The dial is bounded by
// the configured connect timeout and does not hold the controller lock.
func (c *Controller) Connect(ctx context.Context) error {
	c.mutex.Lock()
	if c.connected && c.conn != nil {
		c.mutex.Unlock()
		return nil
	}
	c.mutex.Unlock()

	dialer := &net.Dialer{
		Timeout:   c.connectTimeout,
		KeepAlive: 30 * time.Second,
	}

	conn, err := dialer.DialContext(ctx, "tcp", c.addr)
	if err != nil {
		c.mutex.Lock()
		c.connected = false
		c.conn = nil
		c.mutex.Unlock()

		connErr := classifyDialError(c.addr, err)
		c.logger.Error("Failed to connect to robot",
			zap.String("kind", string(connErr.Kind)),
			zap.Error(err),
		)
		return connErr
	}

	c.mutex.Lock()
	if c.connected && c.conn != nil {
		// Lost the race against another Connect; keep the existing link.
		c.mutex.Unlock()
		conn.Close()
		return nil
	}
	if c.conn != nil {
		// Stale link left over from a failed send.
		c.conn.Close()
	}
	c.conn = conn
	c.connected = true
	c.mutex.Unlock()

	c.logger.Info("Connected to robot")
	return nil
}

// SendCommand writes a single command byte to the robot. Sends are paced by
// the cooldown: a call arriving early sleeps out the remainder before writing.
// This is pacing, not queuing; overlapping calls each wait independently.
func (c *Controller) SendCommand(cmd byte) error {
	c.mutex.Lock()
	if !c.connected || c.conn == nil {
		c.mutex.Unlock()
		return ErrNotConnected
	}
	wait := c.cooldown - time.Since(c.lastCommandAt)
	c.mutex.Unlock()

	if wait > 0 {
		time.Sleep(wait)
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	if !c.connected || c.conn == nil {
		return ErrNotConnected
	}

	if _, err := c.conn.Write([]byte{cmd}); err != nil {
		c.connected = false
		c.logger.Error("Failed to send command",
			zap.String("command", string(cmd)),
			zap.Error(err),
		)
		return &SendError{Command: cmd, Err: err}
	}

	c.lastCommandAt = time.Now()
	c.logger.Debug("Sent command to robot", zap.String("command", string(cmd)))
	return nil
}

// HealthCheck probes the link with a short read. The robot never writes on
// this link, so a deadline expiry means an idle, healthy connection; any
// other read error marks the link down.
func (c *Controller) HealthCheck() bool {
	c.mutex.Lock()
	conn := c.conn
	connected := c.connected
	c.mutex.Unlock()

	if !connected || conn == nil {
		return false
	}

	conn.SetReadDeadline(time.Now().Add(c.healthTimeout))
	defer conn.SetReadDeadline(time.Time{})

	buf := make([]byte, 1)
	if _, err := conn.Read(buf); err != nil {
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return true
		}

		c.mutex.Lock()
		c.connected = false
		c.mutex.Unlock()

		c.logger.Warn("Health check failed", zap.Error(err))
		return false
	}

	return true
}

// IsConnected reports whether the link is up.
func (c *Controller) IsConnected() bool {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.connected && c.conn != nil
}

// Disconnect sends the quit command best-effort, closes the link, and clears
// the connected flag. Safe to call repeatedly.
func (c *Controller) Disconnect() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.conn != nil {
		c.conn.SetWriteDeadline(time.Now().Add(time.Second))
		c.conn.Write([]byte{QuitCommand})
		c.conn.Close()
		c.conn = nil
		c.logger.Info("Disconnected from robot")
	}

	c.connected = false
}
