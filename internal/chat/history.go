package chat

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// History keeps recent conversation turns per conversation ID in an
// expiring in-memory store. Only the last maxTurns exchanges are kept;
// idle conversations expire after the TTL.
type History struct {
	store    *gocache.Cache
	maxTurns int
}

// NewHistory creates a history store. maxTurns is the number of
// user/assistant exchanges retained per conversation.
func NewHistory(ttl time.Duration, maxTurns int) *History {
	return &History{
		store:    gocache.New(ttl, ttl/2),
		maxTurns: maxTurns,
	}
}

// Recent returns the stored turns for a conversation, oldest first.
func (h *History) Recent(conversationID string) []Turn {
	if conversationID == "" {
		return nil
	}
	value, ok := h.store.Get(conversationID)
	if !ok {
		return nil
	}
	turns := value.([]Turn)
	out := make([]Turn, len(turns))
	copy(out, turns)
	return out
}

// Record appends one user/assistant exchange and refreshes the TTL.
// The oldest exchanges are dropped beyond the turn limit.
func (h *History) Record(conversationID, question, answer string) {
	if conversationID == "" {
		return
	}

	turns := h.Recent(conversationID)
	turns = append(turns,
		Turn{Role: RoleUser, Content: question},
		Turn{Role: RoleAssistant, Content: answer},
	)
	if limit := h.maxTurns * 2; len(turns) > limit {
		turns = turns[len(turns)-limit:]
	}
	h.store.SetDefault(conversationID, turns)
}

// Clear removes a conversation's history.
func (h *History) Clear(conversationID string) {
	h.store.Delete(conversationID)
}
