// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package broker

import (
	"time"

	"github.com/ninibe/streamrelay/message"
)

const testUpdateInterval = 10 * time.Millisecond

func newTestMessage(v string) message.Message {
	return message.New([]byte(v))
}
