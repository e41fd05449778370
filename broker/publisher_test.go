// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package broker

import (
	"testing"
	"time"
)

func TestPublisherRejectsBeforeSelect(t *testing.T) {
	b := newBroker(t)
	c := newTestClient(NewPublisher(b, testUpdateInterval))
	defer c.close()

	got := c.send(">hello\n")
	if len(got) == 0 || got[0] != '-' {
		t.Fatalf("publish before select = %q, want a negative response", got)
	}
}

func TestPublisherSelectAndPublish(t *testing.T) {
	b := newBroker(t)
	if _, err := b.CreateTopic("orders", 3, 4); err != nil {
		t.Fatal(err)
	}

	c := newTestClient(NewPublisher(b, testUpdateInterval))
	defer c.close()

	if got := c.send("@orders\n"); got != "+ok\n" {
		t.Fatalf("select response = %q, want %q", got, "+ok\n")
	}

	if got := c.send(">hello\n"); got != "+hello\n" {
		t.Fatalf("publish response = %q, want %q", got, "+hello\n")
	}
}

func TestPublisherSelectUnknownTopic(t *testing.T) {
	b := newBroker(t)
	c := newTestClient(NewPublisher(b, testUpdateInterval))
	defer c.close()

	got := c.send("@missing\n")
	if len(got) == 0 || got[0] != '-' {
		t.Fatalf("select of missing topic = %q, want a negative response", got)
	}
}

func TestPublisherCloseFlushesWriter(t *testing.T) {
	b := newBroker(t)
	if _, err := b.CreateTopic("orders", 3, 4); err != nil {
		t.Fatal(err)
	}

	c := newTestClient(NewPublisher(b, testUpdateInterval))

	if got := c.send("@orders\n"); got != "+ok\n" {
		t.Fatal(got)
	}
	if got := c.send(">m\n"); got != "+m\n" {
		t.Fatal(got)
	}

	c.close()

	// the handler goroutine needs a beat to observe the closed pipe and
	// run its deferred flush; CloseWriter already released the writer
	// from the registry by the time a second OpenWriter would succeed.
	for i := 0; i < 100; i++ {
		if _, err := b.OpenWriter("orders"); err == nil {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("writer was never released after client disconnect")
}
