// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package streamrelay

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"testing"
)

func tempTopic(t *testing.T, numOfMsgPerFile, numOfSegments uint64) TopicMetaData {
	t.Helper()

	dataDir := filepath.Join(os.TempDir(), fmt.Sprintf("streamrelay-test-%d", rand.Int63()))
	panicOn(os.MkdirAll(dataDir, 0o755))
	t.Cleanup(func() { _ = os.RemoveAll(dataDir) })

	topic, err := NewTopic("foo", dataDir)
	panicOn(err)

	meta := NewTopicMetaData(topic, numOfMsgPerFile, numOfSegments)
	panicOn(CreateTopic(meta))

	return meta
}

func panicOn(err error) {
	if err != nil {
		panic(err)
	}
}

func mustReadFile(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading %q: %s", path, err)
	}
	return string(b)
}
