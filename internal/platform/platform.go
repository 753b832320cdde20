// Package platform contains the presentation transports. The core treats
// them as opaque: a sink for displayed utterances and a source of raw user
// input. All blocking I/O lives here, never in the connector.
package platform

import (
	"github.com/converseworks/convkit/internal/dialogue"
)

// Platform is the full transport port. Connect/Disconnect bracket a user's
// session, Message delivers free-form text, and the two Display operations
// deliver registered utterances.
type Platform interface {
	Connect(userID string) error
	Disconnect(userID string) error
	Message(userID, text string) error
	DisplayAgentUtterance(u *dialogue.AnnotatedUtterance, agentID, userID string) error
	DisplayUserUtterance(u *dialogue.AnnotatedUtterance, userID string) error
}
