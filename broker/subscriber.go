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

// Subscriber implements the {Unselected, Selected(reader, offset)}
// state machine of §4.7: SelectTopic constructs a reader at offset 0,
// SetReadOffset repositions it, ReadMessage returns the next message
// and advances the cursor.
type Subscriber struct {
	broker         *streamrelay.Broker
	updateInterval time.Duration
}

// NewSubscriber returns a handler backed by b, gating each reader's
// manifest refresh to at most once per updateInterval (§4.5).
func NewSubscriber(b *streamrelay.Broker, updateInterval time.Duration) *Subscriber {
	return &Subscriber{broker: b, updateInterval: updateInterval}
}

// Handle services cmd lines until the connection closes, releasing
// any acquired reader on the way out.
func (s *Subscriber) Handle(conn *sesp.Conn) {
	var (
		reader        *streamrelay.TopicReader
		topicName     string
		currentOffset uint64
	)

	defer func() {
		if reader != nil {
			s.broker.CloseReader(topicName)
		}
	}()

	for {
		cmd, err := conn.ReadCommand()
		if err == io.EOF {
			return
		}
		if err != nil {
			log.Printf("warn: subscriber read failed: %s", err)
			return
		}

		switch cmd.Verb {
		case sesp.SelectTopic:
			if reader != nil {
				s.broker.CloseReader(topicName)
			}

			r, err := s.broker.OpenReader(cmd.TopicName, s.updateInterval)
			if err != nil {
				reader = nil
				writeErr(conn, err)
				continue
			}

			reader, topicName, currentOffset = r, cmd.TopicName, 0
			writeOK(conn)

		case sesp.SetReadOffset:
			if reader == nil {
				writeErr(conn, streamrelay.ErrNotSelected)
				continue
			}
			currentOffset = cmd.Offset

			if topic, err := s.broker.NewTopic(topicName); err == nil {
				log.Printf("trace: subscriber seek %+v", streamrelay.NewTopicWithOffset(topic, currentOffset))
			}
			writeOK(conn)

		case sesp.ReadMessage:
			if reader == nil {
				writeErr(conn, streamrelay.ErrNotSelected)
				continue
			}

			msg, ok, err := reader.Read(currentOffset)
			if err != nil {
				writeErr(conn, err)
				continue
			}
			if !ok {
				writeErr(conn, streamrelay.ErrNoData)
				continue
			}

			if err := conn.WriteResponse(sesp.Ok(msg.Value())); err != nil {
				log.Printf("warn: subscriber write failed: %s", err)
				return
			}
			currentOffset++

		default:
			writeErr(conn, streamrelay.ErrInvalidCommand)
		}
	}
}
