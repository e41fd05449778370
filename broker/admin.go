// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package broker

import (
	"io"
	"log"

	"github.com/ninibe/streamrelay"
	"github.com/ninibe/streamrelay/sesp"
)

// Admin handles CreateTopic and DeleteTopic only; any other verb gets
// a negative response (§4.7).
type Admin struct {
	broker        *streamrelay.Broker
	numMsgPerFile uint64
	numSegments   uint64
}

// NewAdmin returns a handler backed by b, using numMsgPerFile and
// numSegments as the CreateTopic defaults when a client doesn't carry
// its own (SESP's CreateTopic frame names the topic only, §4.6).
func NewAdmin(b *streamrelay.Broker, numMsgPerFile, numSegments uint64) *Admin {
	return &Admin{broker: b, numMsgPerFile: numMsgPerFile, numSegments: numSegments}
}

// Handle services cmd lines until the connection closes.
func (a *Admin) Handle(conn *sesp.Conn) {
	for {
		cmd, err := conn.ReadCommand()
		if err == io.EOF {
			return
		}
		if err != nil {
			log.Printf("warn: admin read failed: %s", err)
			return
		}

		resp := a.dispatch(cmd)
		if err := conn.WriteResponse(resp); err != nil {
			log.Printf("warn: admin write failed: %s", err)
			return
		}
	}
}

func (a *Admin) dispatch(cmd sesp.Command) sesp.Response {
	switch cmd.Verb {
	case sesp.CreateTopic:
		_, err := a.broker.CreateTopic(cmd.TopicName, a.numMsgPerFile, a.numSegments)
		if err != nil {
			return sesp.Err(err.Error())
		}
		return sesp.Ok([]byte("ok"))

	case sesp.DeleteTopic:
		if err := a.broker.DeleteTopic(cmd.TopicName); err != nil {
			return sesp.Err(err.Error())
		}
		return sesp.Ok([]byte("ok"))

	default:
		return sesp.Err(streamrelay.ErrInvalidCommand.Error())
	}
}
