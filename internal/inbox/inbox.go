// Package inbox holds raw bank notifications waiting to be parsed. A message
// leaves the inbox exactly once, when the transaction derived from it is
// committed; parse failures and aborts leave it untouched for retry.
package inbox

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/voznikov/banknote/internal/domain"
)

// Inbox is the collection of pending messages. Safe for concurrent use.
type Inbox struct {
	mu  sync.Mutex
	log zerolog.Logger

	messages []domain.InboxMessage
	nextID   int64
	subs     []func()
}

// New creates an empty inbox.
func New(log zerolog.Logger) *Inbox {
	return &Inbox{log: log, nextID: 1}
}

// Restore replaces the inbox contents with previously persisted state.
// Called once at startup, before subscribers are registered.
func (in *Inbox) Restore(messages []domain.InboxMessage) {
	in.mu.Lock()
	defer in.mu.Unlock()

	in.messages = append([]domain.InboxMessage(nil), messages...)
	for _, m := range in.messages {
		if m.ID >= in.nextID {
			in.nextID = m.ID + 1
		}
	}
}

// Subscribe registers fn to run after every mutation, outside the lock.
func (in *Inbox) Subscribe(fn func()) {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.subs = append(in.subs, fn)
}

func (in *Inbox) notify() {
	in.mu.Lock()
	subs := append(([]func())(nil), in.subs...)
	in.mu.Unlock()

	for _, fn := range subs {
		fn()
	}
}

// Messages returns a copy of the pending messages.
func (in *Inbox) Messages() []domain.InboxMessage {
	in.mu.Lock()
	defer in.mu.Unlock()
	return append([]domain.InboxMessage(nil), in.messages...)
}

// Get looks up a message by id.
func (in *Inbox) Get(id int64) (domain.InboxMessage, bool) {
	in.mu.Lock()
	defer in.mu.Unlock()
	for _, m := range in.messages {
		if m.ID == id {
			return m, true
		}
	}
	return domain.InboxMessage{}, false
}

// Add appends a new message.
func (in *Inbox) Add(sender, text string) domain.InboxMessage {
	in.mu.Lock()
	msg := domain.InboxMessage{ID: in.nextID, Sender: sender, Text: text}
	in.nextID++
	in.messages = append(in.messages, msg)
	in.mu.Unlock()

	in.log.Debug().Int64("message_id", msg.ID).Str("sender", sender).Msg("Inbox message added")
	in.notify()
	return msg
}

// Remove deletes a message by id and reports whether it was present.
func (in *Inbox) Remove(id int64) bool {
	in.mu.Lock()
	found := false
	for i, m := range in.messages {
		if m.ID == id {
			in.messages = append(in.messages[:i], in.messages[i+1:]...)
			found = true
			break
		}
	}
	in.mu.Unlock()

	if found {
		in.log.Debug().Int64("message_id", id).Msg("Inbox message removed")
		in.notify()
	}
	return found
}
