// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package broker

import (
	"io"
	"log"
	"time"

	"github.com/ninibe/streamrelay"
	"github.com/ninibe/streamrelay/sesp"
)

// Publisher implements the {Unselected, Selected(writer)} state
// machine of §4.7: SelectTopic acquires the topic's single writer,
// PublishMessage appends to it, and disconnecting flushes and
// releases the writer.
type Publisher struct {
	broker *streamrelay.Broker

	// flushInterval is the cadence at which a live writer's watermark
	// is republished while its connection stays open (§4.4: the spec
	// does not mandate a schedule, only that a clean disconnect flushes).
	flushInterval time.Duration
}

// NewPublisher returns a handler backed by b, republishing each live
// writer's watermark every flushInterval.
func NewPublisher(b *streamrelay.Broker, flushInterval time.Duration) *Publisher {
	return &Publisher{broker: b, flushInterval: flushInterval}
}

// Handle services cmd lines until the connection closes, releasing
// any acquired writer on the way out.
func (p *Publisher) Handle(conn *sesp.Conn) {
	var (
		writer    *streamrelay.TopicWriter
		topicName string
	)

	defer func() {
		if writer == nil {
			return
		}
		if err := p.broker.CloseWriter(topicName, writer); err != nil {
			log.Printf("warn: publisher final flush failed topic=%q: %s", topicName, err)
		}
	}()

	for {
		cmd, err := conn.ReadCommand()
		if err == io.EOF {
			return
		}
		if err != nil {
			log.Printf("warn: publisher read failed: %s", err)
			return
		}

		switch cmd.Verb {
		case sesp.SelectTopic:
			if writer != nil {
				if err := p.broker.CloseWriter(topicName, writer); err != nil {
					log.Printf("warn: publisher flush on re-select failed topic=%q: %s", topicName, err)
				}
				writer = nil
			}

			w, err := p.broker.OpenWriter(cmd.TopicName)
			if err != nil {
				writeErr(conn, err)
				continue
			}
			w.StartAutoFlush(p.flushInterval)

			writer, topicName = w, cmd.TopicName
			writeOK(conn)

		case sesp.PublishMessage:
			if writer == nil {
				writeErr(conn, streamrelay.ErrNotSelected)
				continue
			}

			if err := writer.Write(cmd.Message); err != nil {
				writeErr(conn, err)
				continue
			}

			if err := conn.WriteResponse(sesp.Ok(cmd.Message.Value())); err != nil {
				log.Printf("warn: publisher write failed: %s", err)
				return
			}

		default:
			writeErr(conn, streamrelay.ErrInvalidCommand)
		}
	}
}

func writeOK(conn *sesp.Conn) {
	if err := conn.WriteResponse(sesp.Ok([]byte("ok"))); err != nil {
		log.Printf("warn: response write failed: %s", err)
	}
}

func writeErr(conn *sesp.Conn, err error) {
	if werr := conn.WriteResponse(sesp.Err(err.Error())); werr != nil {
		log.Printf("warn: response write failed: %s", werr)
	}
}
