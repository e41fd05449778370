// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package streamrelay is a minimal pub/sub message broker with
// durable, segmented, per-topic append-only log storage (C1–C5). The
// wire protocol and connection handlers that front this package live
// in streamrelay/sesp and streamrelay/broker.
package streamrelay

import (
	"log"
	"os"
	"time"
)

// Broker is the root object for a data directory: it tracks which
// topics exist, materializes new ones, and hands out the single
// registered writer and any number of readers for a topic (§5). It
// generalizes the teacher's NetLog (netlog.go) to the manifest-backed
// topic model C1–C5 implement.
type Broker struct {
	dataDir  string
	registry *Registry
}

// Option configures a Broker at construction time, following the
// teacher's functional-options pattern (netlog.go's Option).
type Option func(*Broker)

// NewBroker opens dataDir, creating it if absent. It does not scan for
// existing topics; Topic and TopicList read them from disk on each call.
func NewBroker(dataDir string, opts ...Option) (*Broker, error) {
	d, err := os.Stat(dataDir)
	if os.IsNotExist(err) {
		if err := os.MkdirAll(dataDir, 0o755); err != nil {
			log.Printf("error: failed to create data dir: %s", err)
			return nil, ErrInvalidDir
		}
	} else if err != nil {
		return nil, ExtErr(err)
	} else if !d.IsDir() {
		return nil, ErrInvalidDir
	}

	b := &Broker{
		dataDir:  dataDir,
		registry: NewRegistry(),
	}

	for _, opt := range opts {
		opt(b)
	}

	return b, nil
}

// DataDir returns the broker's root data directory.
func (b *Broker) DataDir() string { return b.dataDir }

// Registry returns the broker's writer/reader tracking registry.
func (b *Broker) Registry() *Registry { return b.registry }

// NewTopic builds a Topic identity rooted at the broker's data directory.
func (b *Broker) NewTopic(name string) (Topic, error) {
	return NewTopic(name, b.dataDir)
}

// CreateTopic materializes a new topic with the given tunables, or
// no-ops/refuses per §4.3 if one already exists (Open Question #2).
func (b *Broker) CreateTopic(name string, numOfMsgPerFile, numOfSegments uint64) (TopicMetaData, error) {
	topic, err := b.NewTopic(name)
	if err != nil {
		return TopicMetaData{}, err
	}

	meta := NewTopicMetaData(topic, numOfMsgPerFile, numOfSegments)
	if err := CreateTopic(meta); err != nil {
		return TopicMetaData{}, err
	}

	return FromDisk(topic)
}

// Topic returns the manifest for an existing topic, or ErrTopicNotFound.
func (b *Broker) Topic(name string) (TopicMetaData, error) {
	topic, err := b.NewTopic(name)
	if err != nil {
		return TopicMetaData{}, err
	}
	return FromDisk(topic)
}

// DeleteTopic removes a topic's tree, refusing with ErrTopicBusy while
// it has a live writer or reader attached (§9.3).
func (b *Broker) DeleteTopic(name string) error {
	topic, err := b.NewTopic(name)
	if err != nil {
		return err
	}
	return b.registry.Delete(topic)
}

// TopicList returns the names of every topic materialized under the
// broker's data directory.
func (b *Broker) TopicList() ([]string, error) {
	entries, err := os.ReadDir(b.dataDir)
	if err != nil {
		return nil, ExtErr(err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}

		topic, err := b.NewTopic(e.Name())
		if err != nil {
			continue
		}
		if _, err := FromDisk(topic); err != nil {
			continue
		}

		names = append(names, e.Name())
	}

	return names, nil
}

// OpenWriter acquires the single live writer for name, failing with
// ErrTopicBusy if another writer already holds it (§5).
func (b *Broker) OpenWriter(name string) (*TopicWriter, error) {
	meta, err := b.Topic(name)
	if err != nil {
		return nil, err
	}

	w := NewTopicWriter(meta)
	if err := b.registry.AcquireWriter(name, w); err != nil {
		return nil, err
	}

	return w, nil
}

// CloseWriter flushes and releases a writer acquired via OpenWriter.
func (b *Broker) CloseWriter(name string, w *TopicWriter) error {
	defer b.registry.ReleaseWriter(name)
	return w.Close()
}

// OpenReader constructs a reader for name, polling for manifest updates
// at most once per updateInterval, and marks it live in the registry.
func (b *Broker) OpenReader(name string, updateInterval time.Duration) (*TopicReader, error) {
	meta, err := b.Topic(name)
	if err != nil {
		return nil, err
	}

	r, err := NewTopicReader(meta.Topic, updateInterval)
	if err != nil {
		return nil, err
	}

	b.registry.AcquireReader(name)
	return r, nil
}

// CloseReader marks a reader acquired via OpenReader no longer live.
func (b *Broker) CloseReader(name string) {
	b.registry.ReleaseReader(name)
}
