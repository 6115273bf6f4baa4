// Package notify bridges board events to chat platforms (Slack,
// Discord) so the client hears about lane moves, new comments and due
// posts without watching the dashboard.
package notify

import "context"

// Adapter is the interface that platform-specific implementations must
// satisfy. Each adapter handles connection management and message
// delivery for a single chat platform.
type Adapter interface {
	// Connect establishes a connection to the chat platform.
	Connect(ctx context.Context) error

	// Send delivers an outbound message to the platform.
	Send(ctx context.Context, msg OutboundMessage) error

	// Close gracefully shuts down the adapter connection.
	Close() error
}

// OutboundMessage represents a message to be sent to the chat platform.
type OutboundMessage struct {
	ChannelID string           // target channel (empty → adapter default)
	Text      string           // message text (platform-native formatting)
	Events    []FormattedEvent // structured event attachments
}

// FormattedEvent represents a board event formatted for display in chat.
type FormattedEvent struct {
	Title    string  // event headline (e.g. "Post moved to To do")
	Body     string  // detail text
	Severity string  // "info", "warning", "error", "success"
	Color    string  // sidebar color hint (e.g. "#36a64f" for success)
	Fields   []Field // key-value metadata pairs
}

// Field is a key-value pair displayed in an event attachment.
type Field struct {
	Name  string
	Value string
	Short bool // hint: render side-by-side with another field
}
