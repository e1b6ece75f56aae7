// Package conversation owns the widget's state: the transcript, the
// open/typing flags and the send/retry machine that drives one message
// at a time through the backend.
package conversation

import (
	"context"
	"fmt"
	"html"
	"strings"
	"sync"
	"time"

	"github.com/sanagustin/chatwidget/pkg/history"
	"github.com/sanagustin/chatwidget/pkg/logger"
	"github.com/sanagustin/chatwidget/pkg/markdown"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// State is the send machine's position. Transitions are serialized by
// the controller mutex, the Go analogue of the browser's serialized
// event callbacks.
type State int

const (
	Idle State = iota
	Sending
	AwaitingRetryDelay
	Failed
)

func (s State) String() string {
	switch s {
	case Sending:
		return "sending"
	case AwaitingRetryDelay:
		return "awaiting_retry"
	case Failed:
		return "failed"
	default:
		return "idle"
	}
}

// Message is one sent or received chat message. Immutable once created.
type Message struct {
	Text      string
	Role      Role
	Timestamp int64 // epoch ms
}

type EntryKind string

const (
	EntryMessage EntryKind = "message"
	EntryNotice  EntryKind = "notice"
)

// Entry is one transcript item as shown by the widget, with the
// server-rendered HTML alongside the raw text.
type Entry struct {
	Kind      EntryKind `json:"kind"`
	Role      Role      `json:"role,omitempty"`
	Text      string    `json:"text"`
	HTML      string    `json:"html"`
	Timestamp int64     `json:"timestamp"`

	noticeID int
}

// Snapshot is the controller state the widget page reflects on each poll.
type Snapshot struct {
	Entries      []Entry `json:"entries"`
	Typing       bool    `json:"typing"`
	Open         bool    `json:"open"`
	InputEnabled bool    `json:"inputEnabled"`
	FocusInput   bool    `json:"focusInput"`
	State        string  `json:"state"`
}

// Sender delivers one message to the backend and returns the reply text.
type Sender interface {
	Send(ctx context.Context, visitorID, text string) (string, error)
}

// HistoryStore persists the bounded transcript and the visitor identity.
type HistoryStore interface {
	Load() []history.Record
	Save([]history.Record) error
	VisitorID() (string, error)
}

// Options tunes the retry policy. Zero values take the defaults that
// match the original widget.
type Options struct {
	MaxRetries     int
	RetryDelay     time.Duration
	NoticeDuration time.Duration
}

const (
	defaultMaxRetries     = 3
	defaultRetryDelay     = 2000 * time.Millisecond
	defaultNoticeDuration = 5000 * time.Millisecond
)

// User-facing strings, in the voice of the original assistant.
const (
	fallbackReply  = "Disculpá, no pude leer la respuesta. ¿Podés intentar de nuevo?"
	terminalNotice = "No pudimos enviar tu mensaje. Intentá de nuevo más tarde o contactate directamente con el colegio."
)

// Controller owns ConversationState and the transcript. All mutation
// goes through its methods under one mutex; the only async operation is
// the backend call.
type Controller struct {
	mu     sync.Mutex
	sender Sender
	store  HistoryStore
	opts   Options

	visitorID  string
	state      State
	open       bool
	retryCount int
	focusInput bool

	messages     []Message
	entries      []Entry
	nextNoticeID int

	clock    func() time.Time
	schedule func(time.Duration, func())
	spawn    func(func())
}

// NewController loads the visitor identity and any persisted history,
// then starts in Idle with the transcript repopulated.
func NewController(sender Sender, store HistoryStore, opts Options) (*Controller, error) {
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = defaultMaxRetries
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = defaultRetryDelay
	}
	if opts.NoticeDuration <= 0 {
		opts.NoticeDuration = defaultNoticeDuration
	}

	visitorID, err := store.VisitorID()
	if err != nil {
		return nil, fmt.Errorf("resolving visitor id: %w", err)
	}

	c := &Controller{
		sender:    sender,
		store:     store,
		opts:      opts,
		visitorID: visitorID,
		clock:     time.Now,
		spawn:     func(fn func()) { go fn() },
	}
	c.schedule = func(d time.Duration, fn func()) { time.AfterFunc(d, fn) }

	for _, r := range store.Load() {
		role := RoleAssistant
		if r.Type == string(RoleUser) {
			role = RoleUser
		}
		c.appendMessageLocked(Message{Text: r.Text, Role: role, Timestamp: r.Timestamp})
	}
	return c, nil
}

// VisitorID returns the stable visitor identifier.
func (c *Controller) VisitorID() string {
	return c.visitorID
}

// Submit starts a send for the given input. It reports false when the
// submit is ignored: blank input, or a send already in flight (the
// re-entrancy guard).
func (c *Controller) Submit(text string) bool {
	trimmed := strings.TrimSpace(text)

	c.mu.Lock()
	if trimmed == "" || c.state == Sending || c.state == AwaitingRetryDelay {
		c.mu.Unlock()
		return false
	}
	c.state = Sending
	c.focusInput = false
	// Optimistic append: the visitor's message lands in the transcript
	// before the backend confirms anything.
	c.appendMessageLocked(Message{Text: trimmed, Role: RoleUser, Timestamp: c.clock().UnixMilli()})
	c.mu.Unlock()

	c.spawn(func() { c.attempt(trimmed) })
	return true
}

// attempt issues one backend request and applies the outcome. Re-issued
// verbatim by the retry timer.
func (c *Controller) attempt(text string) {
	reply, err := c.sender.Send(context.Background(), c.visitorID, text)

	c.mu.Lock()
	if err != nil {
		c.failLocked(text, err)
		c.mu.Unlock()
		return
	}

	if reply == "" {
		reply = fallbackReply
	}
	c.appendMessageLocked(Message{Text: reply, Role: RoleAssistant, Timestamp: c.clock().UnixMilli()})
	c.retryCount = 0
	c.state = Idle
	c.focusInput = true
	records := recordsOf(c.messages)
	c.mu.Unlock()

	if err := c.store.Save(records); err != nil {
		logger.WarnCF("conversation", "Persisting history failed", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

// failLocked runs the failure side of the machine: schedule a retry of
// the same message, or give up after MaxRetries.
func (c *Controller) failLocked(text string, cause error) {
	if c.retryCount < c.opts.MaxRetries {
		c.retryCount++
		attempt := c.retryCount
		logger.WarnCF("conversation", fmt.Sprintf("Send failed: %v, retrying", cause),
			map[string]interface{}{"attempt": attempt, "max_retries": c.opts.MaxRetries})

		c.addNoticeLocked(fmt.Sprintf("No pudimos enviar tu mensaje, reintentando (intento %d de %d)...",
			attempt, c.opts.MaxRetries), true)
		c.state = AwaitingRetryDelay

		c.schedule(c.opts.RetryDelay, func() {
			c.mu.Lock()
			if c.state != AwaitingRetryDelay {
				c.mu.Unlock()
				return
			}
			c.state = Sending
			c.mu.Unlock()
			c.attempt(text)
		})
		return
	}

	logger.ErrorCF("conversation", fmt.Sprintf("Send failed after %d attempts: %v",
		c.opts.MaxRetries+1, cause), nil)
	c.state = Failed
	// retryCount stays put until the next successful send.
	c.addNoticeLocked(terminalNotice, false)
}

// addNoticeLocked appends an in-transcript notice. Transient notices are
// auto-dismissed after NoticeDuration if still present.
func (c *Controller) addNoticeLocked(text string, transient bool) {
	c.nextNoticeID++
	id := c.nextNoticeID
	c.entries = append(c.entries, Entry{
		Kind:      EntryNotice,
		Text:      text,
		HTML:      plainHTML(text),
		Timestamp: c.clock().UnixMilli(),
		noticeID:  id,
	})
	if transient {
		c.schedule(c.opts.NoticeDuration, func() { c.dismissNotice(id) })
	}
}

func (c *Controller) dismissNotice(id int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	kept := c.entries[:0]
	for _, e := range c.entries {
		if e.Kind == EntryNotice && e.noticeID == id {
			continue
		}
		kept = append(kept, e)
	}
	c.entries = kept
}

func (c *Controller) appendMessageLocked(m Message) {
	c.messages = append(c.messages, m)
	entryHTML := plainHTML(m.Text)
	if m.Role == RoleAssistant {
		entryHTML = markdown.Render(m.Text)
	}
	c.entries = append(c.entries, Entry{
		Kind:      EntryMessage,
		Role:      m.Role,
		Text:      m.Text,
		HTML:      entryHTML,
		Timestamp: m.Timestamp,
	})
}

// SetOpen records the panel's open/closed state.
func (c *Controller) SetOpen(open bool) {
	c.mu.Lock()
	c.open = open
	c.mu.Unlock()
}

// Toggle flips the panel state and returns the new value.
func (c *Controller) Toggle() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.open = !c.open
	return c.open
}

// Snapshot copies the state the widget reflects. The focus request is
// one-shot: it is cleared once read.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	entries := make([]Entry, len(c.entries))
	copy(entries, c.entries)
	snap := Snapshot{
		Entries:      entries,
		Typing:       c.state == Sending,
		Open:         c.open,
		InputEnabled: c.state == Idle || c.state == Failed,
		FocusInput:   c.focusInput,
		State:        c.state.String(),
	}
	c.focusInput = false
	return snap
}

// Messages returns a copy of the full in-memory message history.
func (c *Controller) Messages() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Message, len(c.messages))
	copy(out, c.messages)
	return out
}

func recordsOf(msgs []Message) []history.Record {
	records := make([]history.Record, len(msgs))
	for i, m := range msgs {
		records[i] = history.Record{Text: m.Text, Type: string(m.Role), Timestamp: m.Timestamp}
	}
	return records
}

// plainHTML renders untrusted text as an escaped paragraph, the form
// used for visitor messages and notices.
func plainHTML(text string) string {
	return "<p>" + strings.ReplaceAll(html.EscapeString(text), "\n", "<br>") + "</p>"
}
