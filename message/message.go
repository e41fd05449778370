// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package message holds the single value type exchanged between
// producers, the topic storage engine and consumers.
package message

// Message is an opaque, newline-terminated value with an optional
// offset. Producers submit messages without an offset; the offset is
// set once a reader materializes the message from a stored line.
type Message struct {
	value  []byte
	offset *int64
}

// New returns a Message wrapping value, with no offset set.
func New(value []byte) Message {
	return Message{value: value}
}

// Value returns the raw message bytes, including their trailing '\n'.
func (m Message) Value() []byte {
	return m.value
}

// Offset returns the message's offset and whether one has been set.
func (m Message) Offset() (int64, bool) {
	if m.offset == nil {
		return 0, false
	}
	return *m.offset, true
}

// WithOffset returns a copy of m with its offset set to o.
func (m Message) WithOffset(o int64) Message {
	m.offset = &o
	return m
}

// SetOffset sets m's offset in place, mirroring the original's
// set_offset: callers that already hold a *Message (a reader
// materializing a line from disk) use this instead of rebinding to
// WithOffset's copy.
func (m *Message) SetOffset(o int64) {
	m.offset = &o
}
