// Package edits buffers operator corrections to extraction fields. Changes
// accumulate against a snapshot of the last-known server state and are turned
// into a minimal PATCH payload on save, or dropped wholesale on cancel —
// there is no implicit merge with server state.
package edits

import "fmt"

// Buffer holds pending edits over a server snapshot.
type Buffer struct {
	allowed  map[string]bool
	snapshot map[string]string
	pending  map[string]string
}

// NewBuffer creates a buffer over the given snapshot. Only keys from allowed
// may be edited; the snapshot is copied and never mutated.
func NewBuffer(allowed []string, snapshot map[string]string) *Buffer {
	b := &Buffer{
		allowed:  make(map[string]bool, len(allowed)),
		snapshot: make(map[string]string, len(snapshot)),
		pending:  make(map[string]string),
	}
	for _, k := range allowed {
		b.allowed[k] = true
	}
	for k, v := range snapshot {
		b.snapshot[k] = v
	}
	return b
}

// Set records a pending edit. Setting a field back to its snapshot value
// removes the pending edit rather than recording a no-op change.
func (b *Buffer) Set(field, value string) error {
	if !b.allowed[field] {
		return fmt.Errorf("unknown field %q", field)
	}
	if b.snapshot[field] == value {
		delete(b.pending, field)
		return nil
	}
	b.pending[field] = value
	return nil
}

// Get returns the effective value: the pending edit when present, otherwise
// the snapshot value.
func (b *Buffer) Get(field string) string {
	if v, ok := b.pending[field]; ok {
		return v
	}
	return b.snapshot[field]
}

// Values returns the effective view of every allowed field.
func (b *Buffer) Values() map[string]string {
	out := make(map[string]string, len(b.allowed))
	for k := range b.allowed {
		out[k] = b.Get(k)
	}
	return out
}

// Dirty reports whether any edits are pending.
func (b *Buffer) Dirty() bool {
	return len(b.pending) > 0
}

// Diff returns only the fields that differ from the snapshot — the exact
// PATCH body. The returned map is a copy.
func (b *Buffer) Diff() map[string]string {
	out := make(map[string]string, len(b.pending))
	for k, v := range b.pending {
		out[k] = v
	}
	return out
}

// Commit replaces the snapshot with the server's post-save state and clears
// all pending edits atomically.
func (b *Buffer) Commit(saved map[string]string) {
	b.snapshot = make(map[string]string, len(saved))
	for k, v := range saved {
		b.snapshot[k] = v
	}
	b.pending = make(map[string]string)
}

// Discard drops all pending edits, restoring the snapshot view.
func (b *Buffer) Discard() {
	b.pending = make(map[string]string)
}
