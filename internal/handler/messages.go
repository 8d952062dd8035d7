// internal/handler/messages.go
package handler

import "fmt"

// ClientMessage is an inbound message from the browser client
type ClientMessage struct {
	Type    string `json:"type"`
	Command string `json:"command,omitempty"`
}

// ServerMessage is an outbound event to the browser client. Connected is a
// pointer so that messages which carry no connection state omit the field.
type ServerMessage struct {
	Type      string `json:"type"`
	Message   string `json:"message"`
	Command   string `json:"command,omitempty"`
	Connected *bool  `json:"connected,omitempty"`
}

func boolPtr(b bool) *bool {
	return &b
}

// statusMessage builds a status event with connection state
func statusMessage(message string, connected bool) *ServerMessage {
	return &ServerMessage{
		Type:      "status",
		Message:   message,
		Connected: boolPtr(connected),
	}
}

// ackMessage builds an acknowledgment for an executed command
func ackMessage(command string) *ServerMessage {
	return &ServerMessage{
		Type:    "acknowledgment",
		Message: fmt.Sprintf("Command '%s' executed", command),
		Command: command,
	}
}

// errorMessage builds a plain error event
func errorMessage(message string) *ServerMessage {
	return &ServerMessage{
		Type:    "error",
		Message: message,
	}
}

// connErrorMessage builds an error event that also reports connection state
func connErrorMessage(message string, connected bool) *ServerMessage {
	return &ServerMessage{
		Type:      "error",
		Message:   message,
		Connected: boolPtr(connected),
	}
}
