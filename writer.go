// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package streamrelay

import (
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/ninibe/streamrelay/message"
)

const writerOffsetHintFile = ".writer_offset.txt"

// TopicWriter is the single owning writer for a topic (§4.4/C4). At
// most one TopicWriter exists per topic at a time; that invariant is
// enforced by Registry, not by TopicWriter itself.
type TopicWriter struct {
	mu sync.Mutex

	meta         TopicMetaData
	writerOffset uint64
	dataPath     string

	stopFlusher chan struct{}
}

// NewTopicWriter constructs a writer for meta. It reads the optional
// .writer_offset.txt hint to resume at a prior cursor; any missing or
// unparsable hint falls back to offset 0 (§4.4).
func NewTopicWriter(meta TopicMetaData) *TopicWriter {
	offset := readWriterOffsetHint(meta.Topic)

	w := &TopicWriter{
		meta:         meta,
		writerOffset: offset,
		dataPath:     OffsetToPath(meta, offset),
	}

	return w
}

func readWriterOffsetHint(topic Topic) uint64 {
	b, err := os.ReadFile(hintPath(topic))
	if err != nil {
		return 0
	}

	n, err := strconv.ParseUint(strings.TrimSpace(string(b)), 10, 64)
	if err != nil {
		return 0
	}

	return n
}

func hintPath(topic Topic) string {
	return filepath.Join(topic.Path(), writerOffsetHintFile)
}

// Offset returns the next offset that will be assigned to a written message.
func (w *TopicWriter) Offset() uint64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.writerOffset
}

// Write appends msg's value to the current segment file, rolling over
// to a new segment when the file fills (§4.4). msg is expected to end
// in '\n'; the writer does not enforce this — it is the caller's
// contract (the SESP PublishMessage frame already guarantees it, §4.6).
func (w *TopicWriter) Write(msg message.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	f, err := os.OpenFile(w.dataPath, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0o644)
	if err != nil {
		return ExtErr(err)
	}
	defer logClose(f)

	if _, err := f.Write(msg.Value()); err != nil {
		return ExtErr(err)
	}

	w.writerOffset++
	if w.writerOffset%w.meta.NumOfMsgPerFile == 0 {
		w.dataPath = OffsetToPath(w.meta, w.writerOffset)
	}

	return nil
}

// FlushTopicMetadata rewrites the manifest with the current watermark
// (§4.4): last_flushed_offset becomes writer_offset-1, or absent if no
// message has ever been written. The rewrite uses write-temp-then-rename
// so a reader never observes a truncated file (§7, resolving Open
// Question #4). The writer-offset hint is persisted alongside it,
// resolving Open Question #5.
func (w *TopicWriter) FlushTopicMetadata() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	var watermark *uint64
	if w.writerOffset > 0 {
		v := w.writerOffset - 1
		watermark = &v
	}
	w.meta.LastFlushedOffset = watermark

	b, err := w.meta.Serialize()
	if err != nil {
		return ExtErr(err)
	}

	if err := atomicWrite(w.meta.Topic.MetadataPath(), b); err != nil {
		return ExtErr(err)
	}

	if err := atomicWrite(hintPath(w.meta.Topic), []byte(strconv.FormatUint(w.writerOffset, 10))); err != nil {
		log.Printf("warn: failed to persist writer offset hint for %q: %s", w.meta.Topic.Name(), err)
	}

	return nil
}

func atomicWrite(path string, b []byte) error {
	tmp := path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}

	if _, err := f.Write(b); err != nil {
		logClose(f)
		return err
	}

	if err := f.Sync(); err != nil {
		logClose(f)
		return err
	}

	if err := f.Close(); err != nil {
		return err
	}

	return os.Rename(tmp, path)
}

// StartAutoFlush launches a background goroutine that calls
// FlushTopicMetadata every interval until Close is called, generalizing
// the teacher's messageBuffer flush ticker (message_buffer.go) to the
// manifest-watermark flush this design requires.
func (w *TopicWriter) StartAutoFlush(interval time.Duration) {
	if interval <= 0 {
		return
	}

	w.mu.Lock()
	if w.stopFlusher != nil {
		w.mu.Unlock()
		return
	}
	w.stopFlusher = make(chan struct{})
	stop := w.stopFlusher
	w.mu.Unlock()

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := w.FlushTopicMetadata(); err != nil {
					log.Printf("alert: periodic flush failed: %s", err)
				}
			case <-stop:
				return
			}
		}
	}()
}

// Close stops the auto-flush goroutine, if any, and performs one final
// flush so a clean disconnect always publishes the writer's watermark
// (§4.7's publisher-handler contract).
func (w *TopicWriter) Close() error {
	w.mu.Lock()
	stop := w.stopFlusher
	w.stopFlusher = nil
	w.mu.Unlock()

	if stop != nil {
		close(stop)
	}

	return w.FlushTopicMetadata()
}
