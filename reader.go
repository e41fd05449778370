// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package streamrelay

import (
	"bufio"
	"log"
	"os"
	"time"

	"github.com/ninibe/streamrelay/message"
)

// DefaultReaderUpdateInterval is the minimum spacing between manifest
// refreshes for a reader that keeps missing past its cached watermark
// (§4.5's rate-limiting rationale).
const DefaultReaderUpdateInterval = 200 * time.Millisecond

// TopicReader resolves an offset to a stored message, trailing the
// manifest's published watermark (§4.5/C5). TopicReaders are
// independent and read-only; any number may read any topic.
type TopicReader struct {
	meta           TopicMetaData
	lastUpdated    time.Time
	updateInterval time.Duration
	nextUpdateAt   time.Time

	// cached for fast-path reads without touching meta through an
	// interface boundary every call.
	lastFlushedOffset *uint64
}

// NewTopicReader constructs a reader over topic's current manifest
// snapshot, polling for updates at most once per updateInterval.
func NewTopicReader(topic Topic, updateInterval time.Duration) (*TopicReader, error) {
	meta, err := FromDisk(topic)
	if err != nil {
		return nil, err
	}

	return newTopicReaderFromMeta(meta, updateInterval), nil
}

func newTopicReaderFromMeta(meta TopicMetaData, updateInterval time.Duration) *TopicReader {
	now := time.Now()
	return &TopicReader{
		meta:              meta,
		lastUpdated:       now,
		updateInterval:    updateInterval,
		nextUpdateAt:      now.Add(updateInterval),
		lastFlushedOffset: meta.LastFlushedOffset,
	}
}

// Read resolves offset to a message (§4.5). It returns (msg, true, nil)
// when offset is durable and present, (Message{}, false, nil) when
// offset is not yet published, and a non-nil error only for genuine
// I/O or corruption failures.
func (r *TopicReader) Read(offset uint64) (message.Message, bool, error) {
	notSatisfied := r.lastFlushedOffset == nil || offset > *r.lastFlushedOffset
	if notSatisfied && time.Now().After(r.nextUpdateAt) {
		if err := r.refresh(); err != nil {
			log.Printf("warn: manifest refresh failed for %q: %s", r.meta.Topic.Name(), err)
		}
	}

	if r.lastFlushedOffset == nil || offset > *r.lastFlushedOffset {
		return message.Message{}, false, nil
	}

	path := OffsetToPath(r.meta, offset)
	lineIndex := LineIndex(r.meta, offset)

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			// The manifest's watermark says offset is durable, so its
			// segment file is supposed to exist (§4.1/§6). A missing
			// file at this point is corruption, not an unknown topic —
			// the topic itself already resolved.
			return message.Message{}, false, ErrCorruptSegment
		}
		return message.Message{}, false, ExtErr(err)
	}
	defer logClose(f)

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	var i uint64
	for ; i < lineIndex; i++ {
		if !scanner.Scan() {
			return message.Message{}, false, ErrCorruptSegment
		}
	}

	if !scanner.Scan() {
		return message.Message{}, false, ErrCorruptSegment
	}

	line := append(scanner.Bytes(), '\n')
	msg := message.New(line)
	msg.SetOffset(int64(offset))

	return msg, true, nil
}

// refresh re-reads the manifest if its mtime has advanced since the
// reader last observed it (§4.5 step 2). Errors are swallowed by the
// caller, which keeps serving the cached view (§7: best-effort on the read path).
func (r *TopicReader) refresh() error {
	info, err := os.Stat(r.meta.Topic.MetadataPath())
	if err != nil {
		return err
	}

	if info.ModTime().Before(r.lastUpdated) {
		return nil
	}

	b, err := os.ReadFile(r.meta.Topic.MetadataPath())
	if err != nil {
		return err
	}

	meta, err := DeserializeTopicMetaData(b)
	if err != nil {
		return err
	}

	r.meta = meta
	r.lastUpdated = info.ModTime()
	r.nextUpdateAt = r.lastUpdated.Add(r.updateInterval)
	r.lastFlushedOffset = meta.LastFlushedOffset

	return nil
}
