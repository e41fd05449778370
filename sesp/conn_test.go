// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package sesp

import (
	"io"
	"net"
	"testing"
)

func TestConnReadCommandTerminatedLine(t *testing.T) {
	server, client := net.Pipe()
	defer client.Close()

	go func() {
		client.Write([]byte("#topic\n"))
	}()

	conn := NewConn(server)
	cmd, err := conn.ReadCommand()
	if err != nil {
		t.Fatalf("ReadCommand() error = %v, want nil", err)
	}
	if cmd.Verb != CreateTopic || cmd.TopicName != "topic" {
		t.Fatalf("ReadCommand() = %+v, want CreateTopic(topic)", cmd)
	}
}

// TestConnReadCommandTruncatedLine covers a client that writes a frame
// with no trailing '\n' and disconnects. The command must come back
// Invalid rather than being repaired into the command the truncated
// bytes happen to spell.
func TestConnReadCommandTruncatedLine(t *testing.T) {
	server, client := net.Pipe()

	go func() {
		client.Write([]byte("#foo"))
		client.Close()
	}()

	conn := NewConn(server)
	cmd, err := conn.ReadCommand()
	if err != nil {
		t.Fatalf("ReadCommand() error = %v, want nil", err)
	}
	if cmd.Verb != Invalid {
		t.Fatalf("ReadCommand() = %+v, want Invalid", cmd)
	}
}

func TestConnReadCommandCleanEOF(t *testing.T) {
	server, client := net.Pipe()
	client.Close()

	conn := NewConn(server)
	_, err := conn.ReadCommand()
	if err != io.EOF {
		t.Fatalf("ReadCommand() error = %v, want io.EOF", err)
	}
}
