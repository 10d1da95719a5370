// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package notify implements the stacking notification center ("toasts")
// used to report validation warnings, search outcomes, and exports.
//
// A Center creates its container on first use and keeps it for its whole
// life. Every notification expires after the configured TTL; there is no cap
// on how many are stacked and no deduplication.
package notify

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// DefaultTTL is how long a notification stays visible.
const DefaultTTL = 3 * time.Second

// Kind selects the styling and icon of a notification.
type Kind string

const (
	Success Kind = "success"
	Warning Kind = "warning"
	Danger  Kind = "danger"
	Info    Kind = "info"
)

var icons = map[Kind]string{
	Success: "fa-check-circle",
	Warning: "fa-exclamation-triangle",
	Danger:  "fa-times-circle",
	Info:    "fa-info-circle",
}

// Icon returns the icon class for k, or "" for an unknown kind.
func (k Kind) Icon() string { return icons[k] }

// TextClass returns the text color class that stays readable on k's background.
func (k Kind) TextClass() string {
	if k == Warning {
		return "text-dark"
	}
	return "text-white"
}

// Notification is one message in the stack.
type Notification struct {
	ID      string    `json:"id"`
	Kind    Kind      `json:"kind"`
	Message string    `json:"message"`
	Created time.Time `json:"created"`
	Expires time.Time `json:"expires"`
}

// Sink observes every notification as it is raised.
type Sink func(Notification)

// Center owns the notification container.
type Center struct {
	ttl   time.Duration
	now   func() time.Time
	log   zerolog.Logger
	sinks []Sink

	once      sync.Once
	mu        sync.Mutex
	container *container
}

// container is the stack itself, created lazily by the first Notify.
type container struct {
	items  []Notification
	timers map[string]*time.Timer
	closed bool
}

// Option configures a Center.
type Option func(*Center)

// WithTTL overrides the expiry duration. Non-positive values keep the default.
func WithTTL(ttl time.Duration) Option {
	return func(c *Center) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithClock substitutes the time source used for Created and Expires.
func WithClock(now func() time.Time) Option {
	return func(c *Center) { c.now = now }
}

// WithLogger sets the logger used to record every notification.
func WithLogger(log zerolog.Logger) Option {
	return func(c *Center) { c.log = log }
}

// WithSink registers an observer called synchronously for each notification.
func WithSink(s Sink) Option {
	return func(c *Center) { c.sinks = append(c.sinks, s) }
}

// NewCenter returns a Center with no container yet.
func NewCenter(opts ...Option) *Center {
	c := &Center{
		ttl: DefaultTTL,
		now: time.Now,
		log: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var (
	defaultOnce   sync.Once
	defaultCenter *Center
)

// Default returns the process-wide Center, creating it on first call.
func Default() *Center {
	defaultOnce.Do(func() {
		defaultCenter = NewCenter()
	})
	return defaultCenter
}

// Notify appends a notification and schedules its removal after the TTL.
func (c *Center) Notify(message string, kind Kind) Notification {
	c.ensure()

	created := c.now()
	n := Notification{
		ID:      "toast-" + uuid.NewString(),
		Kind:    kind,
		Message: message,
		Created: created,
		Expires: created.Add(c.ttl),
	}

	c.mu.Lock()
	if !c.container.closed {
		c.container.items = append(c.container.items, n)
		c.container.timers[n.ID] = time.AfterFunc(c.ttl, func() { c.Dismiss(n.ID) })
	}
	c.mu.Unlock()

	c.log.Debug().Str("id", n.ID).Str("kind", string(kind)).Msg(message)
	for _, s := range c.sinks {
		s(n)
	}
	return n
}

func (c *Center) ensure() {
	c.once.Do(func() {
		c.mu.Lock()
		c.container = &container{timers: make(map[string]*time.Timer)}
		c.mu.Unlock()
		c.log.Debug().Msg("notification container created")
	})
}

// Dismiss removes the notification with id. It reports whether it was present.
func (c *Center) Dismiss(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.container == nil {
		return false
	}
	if t, ok := c.container.timers[id]; ok {
		t.Stop()
		delete(c.container.timers, id)
	}
	for i, n := range c.container.items {
		if n.ID == id {
			c.container.items = append(c.container.items[:i], c.container.items[i+1:]...)
			return true
		}
	}
	return false
}

// Active returns the stacked notifications, oldest first.
func (c *Center) Active() []Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.container == nil {
		return nil
	}
	return append([]Notification(nil), c.container.items...)
}

// Created reports whether the container exists yet.
func (c *Center) Created() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.container != nil
}

// Close stops every pending expiry and drops the stack. Later notifications
// still reach the sinks but are not stacked.
func (c *Center) Close() {
	c.ensure()
	c.mu.Lock()
	defer c.mu.Unlock()
	for id, t := range c.container.timers {
		t.Stop()
		delete(c.container.timers, id)
	}
	c.container.items = nil
	c.container.closed = true
}
