// Package models defines server-side data models persisted in the database.
package models

// Provenance pairs a user-editable current value with the value the model
// produced on its first successful generation. Original is nil until the
// first SetOriginalOnce and never changes afterwards.
type Provenance[T any] struct {
	Current  T
	Original *T
}

// Set replaces the current value only.
func (p *Provenance[T]) Set(v T) {
	p.Current = v
}

// SetOriginalOnce records v as the original if none is recorded yet and
// reports whether it did.
func (p *Provenance[T]) SetOriginalOnce(v T) bool {
	if p.Original != nil {
		return false
	}
	p.Original = &v
	return true
}

// HasOriginal reports whether the original value has been recorded.
func (p Provenance[T]) HasOriginal() bool {
	return p.Original != nil
}
