package engine

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// Notice kinds.
const (
	NoticeInfo    = "info"
	NoticeSuccess = "success"
	NoticeError   = "error"
)

// Notice is a transient, user-facing message.
type Notice struct {
	Seq      uint64    `json:"seq"`
	Kind     string    `json:"kind"`
	Message  string    `json:"message"`
	PostedAt time.Time `json:"posted_at"`
}

// NoticeBoard holds at most one notice at a time. Each notice clears itself
// after the board's TTL unless a newer one has replaced it.
type NoticeBoard struct {
	mu      sync.Mutex
	clock   clockwork.Clock
	ttl     time.Duration
	seq     uint64
	current *Notice
}

// NewNoticeBoard creates an empty board whose notices expire after ttl.
func NewNoticeBoard(clock clockwork.Clock, ttl time.Duration) *NoticeBoard {
	return &NoticeBoard{clock: clock, ttl: ttl}
}

// Post replaces the current notice and schedules its expiry.
func (b *NoticeBoard) Post(kind, message string) Notice {
	b.mu.Lock()
	defer b.mu.Unlock()

	// bump sequence to invalidate older expiries
	b.seq++
	n := Notice{Seq: b.seq, Kind: kind, Message: message, PostedAt: b.clock.Now()}
	b.current = &n

	seq := b.seq
	b.clock.AfterFunc(b.ttl, func() { b.expire(seq) })
	return n
}

// Current returns the live notice, if any.
func (b *NoticeBoard) Current() (Notice, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.current == nil {
		return Notice{}, false
	}
	return *b.current, true
}

func (b *NoticeBoard) expire(seq uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.current != nil && b.current.Seq == seq {
		b.current = nil
	}
}
