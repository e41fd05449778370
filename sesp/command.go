// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package sesp implements the Stream-broker Ephemeral Simple Protocol:
// the line-oriented command/response framing carried over a single TCP
// byte stream per connection (§4.6/C6).
package sesp

import (
	"strconv"

	"github.com/ninibe/streamrelay/message"
)

// Verb identifies the kind of command a line encodes.
type Verb int

const (
	// Invalid marks a line that failed to parse (§4.6's catch-all).
	Invalid Verb = iota
	CreateTopic
	DeleteTopic
	SelectTopic
	SetReadOffset
	ReadMessage
	PublishMessage
)

const (
	byteCreateTopic    = '#'
	byteDeleteTopic    = '!'
	byteSelectTopic    = '@'
	byteSetReadOffset  = '$'
	byteReadMessage    = '<'
	bytePublishMessage = '>'
)

// Command is one parsed SESP request line (§4.6).
type Command struct {
	Verb       Verb
	TopicName  string
	Offset     uint64
	Message    message.Message
}

// Invalid-verb sentinel commands carry no payload; only the Verb matters.
var invalidCommand = Command{Verb: Invalid}

// ParseCommand parses a single line (including its trailing '\n') into
// a Command, per the table in §4.6. Any malformed input — fewer than 2
// bytes, a missing trailing '\n', an unknown verb byte, a non-numeric
// SetReadOffset payload, or a non-empty ReadMessage payload — yields
// Invalid.
func ParseCommand(line []byte) Command {
	if len(line) < 2 {
		return invalidCommand
	}

	if line[len(line)-1] != '\n' {
		return invalidCommand
	}

	verbByte := line[0]
	data := line[1 : len(line)-1]

	switch verbByte {
	case byteCreateTopic:
		if len(data) == 0 {
			return invalidCommand
		}
		return Command{Verb: CreateTopic, TopicName: string(data)}

	case byteDeleteTopic:
		if len(data) == 0 {
			return invalidCommand
		}
		return Command{Verb: DeleteTopic, TopicName: string(data)}

	case byteSelectTopic:
		if len(data) == 0 {
			return invalidCommand
		}
		return Command{Verb: SelectTopic, TopicName: string(data)}

	case bytePublishMessage:
		return Command{Verb: PublishMessage, Message: message.New(line[1:])}

	case byteSetReadOffset:
		offset, err := strconv.ParseUint(string(data), 10, 64)
		if err != nil {
			return invalidCommand
		}
		return Command{Verb: SetReadOffset, Offset: offset}

	case byteReadMessage:
		if len(data) != 0 {
			return invalidCommand
		}
		return Command{Verb: ReadMessage}

	default:
		return invalidCommand
	}
}
