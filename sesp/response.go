// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package sesp

const (
	bytePositive = '+'
	byteNegative = '-'
)

// Response is a single SESP reply line (§4.6). Positive carries a
// successful result's payload (a message body, an offset, or simply
// "ok"); a Negative carries an error's text.
type Response struct {
	Positive bool
	Payload  []byte
}

// Ok builds a positive response around payload.
func Ok(payload []byte) Response {
	return Response{Positive: true, Payload: payload}
}

// Err builds a negative response carrying msg as its payload.
func Err(msg string) Response {
	return Response{Positive: false, Payload: []byte(msg)}
}

// Bytes serializes r to the wire form: a '+' or '-' prefix, the
// payload, and a trailing '\n' — appended only if payload does not
// already end in one, resolving Open Question #1 (§4.6/§9.1). A
// PublishMessage echo, for instance, already carries its own '\n' and
// must not gain a second one.
func (r Response) Bytes() []byte {
	var prefix byte = byteNegative
	if r.Positive {
		prefix = bytePositive
	}

	out := make([]byte, 0, len(r.Payload)+2)
	out = append(out, prefix)
	out = append(out, r.Payload...)

	if len(out) == 0 || out[len(out)-1] != '\n' {
		out = append(out, '\n')
	}

	return out
}
