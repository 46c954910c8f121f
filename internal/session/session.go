package session

import (
	"fmt"
	"time"

	"github.com/vozlegal/intake/internal/agent"
	"github.com/vozlegal/intake/internal/errors"
)

// Channel is the transport a conversation arrived on.
type Channel string

const (
	ChannelVoice Channel = "voice"
	ChannelChat  Channel = "chat"
	ChannelSMS   Channel = "sms"
)

// ParseChannel validates a channel string from an external caller.
func ParseChannel(s string) (Channel, error) {
	switch Channel(s) {
	case ChannelVoice, ChannelChat, ChannelSMS:
		return Channel(s), nil
	default:
		return "", errors.InvalidInput(fmt.Sprintf("unknown channel %q", s))
	}
}

// TransferRecord is one entry in a session's transfer history. Records are
// immutable once appended and kept in chronological append order.
type TransferRecord struct {
	From      agent.Type `json:"from"`
	To        agent.Type `json:"to"`
	Reason    string     `json:"reason"`
	Timestamp time.Time  `json:"timestamp"`
}

// Context carries the conversation state the router and composer consume.
type Context struct {
	PreviousAgent   agent.Type        `json:"previous_agent,omitempty"`
	TransferHistory []TransferRecord  `json:"transfer_history,omitempty"`
	CollectedInfo   map[string]string `json:"collected_info,omitempty"`
	Language        agent.Language    `json:"language"`
}

// Session is the mutable per-conversation record. The Manager exclusively
// owns the live record; everything handed out is a snapshot copy.
type Session struct {
	ID           string     `json:"id"`
	AgentType    agent.Type `json:"agent_type"`
	UserID       string     `json:"user_id"`
	Channel      Channel    `json:"channel"`
	StartTime    time.Time  `json:"start_time"`
	LastActivity time.Time  `json:"last_activity"`
	Context      Context    `json:"context"`
}

func (s *Session) clone() *Session {
	out := *s

	out.Context.TransferHistory = make([]TransferRecord, len(s.Context.TransferHistory))
	copy(out.Context.TransferHistory, s.Context.TransferHistory)

	out.Context.CollectedInfo = make(map[string]string, len(s.Context.CollectedInfo))
	for k, v := range s.Context.CollectedInfo {
		out.Context.CollectedInfo[k] = v
	}

	return &out
}
