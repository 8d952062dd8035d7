// internal/handler/robot_handler.go
package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"robot-bridge/internal/robot"
	"robot-bridge/internal/session"
	"robot-bridge/internal/utils"
)

// RobotHandler bridges WebSocket clients to robot TCP links. Each accepted
// client gets one session and one dispatch loop; messages for a session are
// processed strictly in arrival order.
type RobotHandler struct {
	upgrader websocket.Upgrader
	registry *session.Registry
	logger   *utils.ServiceLogger
	base     *zap.Logger
}

// NewRobotHandler creates a new robot WebSocket handler
func NewRobotHandler(registry *session.Registry, logger *zap.Logger) *RobotHandler {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			// In production, implement proper origin checking
			return true
		},
	}

	return &RobotHandler{
		upgrader: upgrader,
		registry: registry,
		logger:   utils.NewServiceLogger(logger, "robot-handler"),
		base:     logger,
	}
}

// RegisterRoutes registers the robot WebSocket route
func (h *RobotHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/ws/robot/:ip", h.HandleRobotConnection)
}

// HandleRobotConnection upgrades the client connection and runs its session
// loop until the client disconnects.
func (h *RobotHandler) HandleRobotConnection(c *gin.Context) {
	ipAddress := c.Param("ip")

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error("Failed to upgrade WebSocket connection", zap.Error(err))
		return
	}
	defer conn.Close()

	sess, err := h.registry.Connect(conn, ipAddress)
	if err != nil {
		// Reject with close code 1003 so the client can tell a bad address
		// apart from an ordinary drop.
		deadline := time.Now().Add(time.Second)
		conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseUnsupportedData, "Invalid IP address"),
			deadline,
		)
		return
	}

	h.logger.Info("WebSocket client connected",
		zap.String("session_id", sess.ID),
		zap.String("robot_addr", sess.Robot.Addr()),
		zap.String("remote_addr", c.Request.RemoteAddr),
	)

	h.RunSession(sess)
}

// RunSession consumes client messages one at a time until the client sends a
// disconnect, the channel errors out, or an outbound write fails. Teardown
// always removes the session from the registry and closes the robot link.
func (h *RobotHandler) RunSession(sess *session.Session) {
	logger := utils.NewSessionLogger(h.base, sess.ID, sess.Robot.Addr())
	defer h.registry.Disconnect(sess.ID)

	for {
		_, data, err := sess.Channel.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				logger.Error("Client channel read error", zap.Error(err))
			}
			return
		}

		if !h.dispatch(sess, logger, data) {
			return
		}
	}
}

// dispatch handles one inbound message. It returns false when the session
// loop should terminate.
func (h *RobotHandler) dispatch(sess *session.Session, logger *utils.SessionLogger, data []byte) bool {
	var msg ClientMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return h.send(sess, logger, errorMessage("Invalid JSON message"))
	}

	switch msg.Type {
	case "connect":
		return h.handleConnect(sess, logger)
	case "command":
		return h.handleCommand(sess, logger, msg.Command)
	case "disconnect":
		// No reply; the loop ends and teardown follows.
		return false
	default:
		return h.send(sess, logger, errorMessage(fmt.Sprintf("Unknown command type: %s", msg.Type)))
	}
}

// handleConnect dials the robot link and reports the outcome
func (h *RobotHandler) handleConnect(sess *session.Session, logger *utils.SessionLogger) bool {
	err := sess.Robot.Connect(context.Background())
	sess.Connected = err == nil
	logger.LogConnection("connect", err == nil, err)

	if err != nil {
		return h.send(sess, logger, connErrorMessage("Failed to connect to robot", false))
	}
	return h.send(sess, logger, statusMessage("Connected to robot", true))
}

// handleCommand validates and forwards one robot command. Validation runs
// before the connectivity check, so a bad command is reported as such even on
// a disconnected session. A failed send flips the controller's own connected
// flag; the session only surfaces "Robot not connected" on the next attempt.
func (h *RobotHandler) handleCommand(sess *session.Session, logger *utils.SessionLogger, command string) bool {
	if !robot.ValidCommand(command) {
		return h.send(sess, logger, errorMessage(fmt.Sprintf("Invalid command: %s", command)))
	}

	if !sess.Connected || !sess.Robot.IsConnected() {
		return h.send(sess, logger, connErrorMessage("Robot not connected", false))
	}

	if err := sess.Robot.SendCommand(command[0]); err != nil {
		return h.send(sess, logger, errorMessage(fmt.Sprintf("Failed to execute command '%s'", command)))
	}

	return h.send(sess, logger, ackMessage(command))
}

// send writes one outbound message. A write failure is fatal to the session,
// so it returns false to stop the loop.
func (h *RobotHandler) send(sess *session.Session, logger *utils.SessionLogger, msg *ServerMessage) bool {
	if err := sess.Channel.WriteJSON(msg); err != nil {
		logger.Error("Failed to send message to client", zap.Error(err))
		return false
	}
	return true
}
