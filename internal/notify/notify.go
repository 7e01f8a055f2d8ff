// Package notify collects short, dismissible user notifications produced
// while serving one request or running one command.
package notify

import (
	"context"
	"sync"
)

type Variant string

const (
	VariantDefault     Variant = "default"
	VariantDestructive Variant = "destructive"
)

type Notification struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Variant     Variant `json:"variant"`
}

// Notifier is safe for concurrent use. A nil *Notifier discards everything.
type Notifier struct {
	mu    sync.Mutex
	items []Notification
}

func New() *Notifier {
	return &Notifier{}
}

func (n *Notifier) Notify(item Notification) {
	if n == nil {
		return
	}
	if item.Variant == "" {
		item.Variant = VariantDefault
	}
	n.mu.Lock()
	n.items = append(n.items, item)
	n.mu.Unlock()
}

func (n *Notifier) Info(title, description string) {
	n.Notify(Notification{Title: title, Description: description, Variant: VariantDefault})
}

func (n *Notifier) Error(title, description string) {
	n.Notify(Notification{Title: title, Description: description, Variant: VariantDestructive})
}

// Drain returns the pending notifications and clears them.
func (n *Notifier) Drain() []Notification {
	if n == nil {
		return nil
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	out := n.items
	n.items = nil
	return out
}

func (n *Notifier) Len() int {
	if n == nil {
		return 0
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.items)
}

type contextKey struct{}

func NewContext(ctx context.Context, n *Notifier) context.Context {
	return context.WithValue(ctx, contextKey{}, n)
}

// FromContext returns the notifier stored in ctx, or nil.
func FromContext(ctx context.Context) *Notifier {
	n, _ := ctx.Value(contextKey{}).(*Notifier)
	return n
}
