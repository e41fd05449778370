// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package streamrelay

import (
	"sync"
	"sync/atomic"
)

// Registry tracks the live writer and reader count for every topic a
// broker process is currently serving. It enforces the "at most one
// writer per topic" external invariant (§5) and gives DeleteTopic a
// way to refuse while a topic is busy (§9.3, Open Question #3). The
// copy-on-write map underneath is adapted from the teacher's generated
// TopicAtomicMap (topic_atomicmap.go): AcquireWriter/ReleaseWriter
// rebuild a new map under a mutex, Writer reads the atomic.Value lock-free.
type Registry struct {
	mu  sync.Mutex
	val atomic.Value // holds registryState

	readers sync.Map // topic name -> *int32 live-reader count
}

type registryState map[string]*TopicWriter

// NewRegistry returns an empty, ready-to-use Registry.
func NewRegistry() *Registry {
	r := &Registry{}
	r.val.Store(make(registryState))
	return r
}

func (r *Registry) snapshot() registryState {
	return r.val.Load().(registryState)
}

// AcquireWriter registers w as the live writer for topicName. It fails
// with ErrTopicBusy if a writer is already registered for that topic.
func (r *Registry) AcquireWriter(topicName string, w *TopicWriter) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	m1 := r.snapshot()
	if _, ok := m1[topicName]; ok {
		return ErrTopicBusy
	}

	m2 := make(registryState, len(m1)+1)
	for k, v := range m1 {
		m2[k] = v
	}
	m2[topicName] = w
	r.val.Store(m2)

	return nil
}

// ReleaseWriter unregisters the live writer for topicName, if any.
func (r *Registry) ReleaseWriter(topicName string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	m1 := r.snapshot()
	if _, ok := m1[topicName]; !ok {
		return
	}

	m2 := make(registryState, len(m1)-1)
	for k, v := range m1 {
		if k != topicName {
			m2[k] = v
		}
	}
	r.val.Store(m2)
}

// Writer returns the live writer registered for topicName, if any.
func (r *Registry) Writer(topicName string) (*TopicWriter, bool) {
	w, ok := r.snapshot()[topicName]
	return w, ok
}

// AcquireReader records one more live reader on topicName.
func (r *Registry) AcquireReader(topicName string) {
	v, _ := r.readers.LoadOrStore(topicName, new(int32))
	atomic.AddInt32(v.(*int32), 1)
}

// ReleaseReader records one fewer live reader on topicName.
func (r *Registry) ReleaseReader(topicName string) {
	v, ok := r.readers.Load(topicName)
	if !ok {
		return
	}
	atomic.AddInt32(v.(*int32), -1)
}

// Busy reports whether topicName currently has a live writer or any
// live readers attached, per the conservative default DeleteTopic
// applies under Open Question #3.
func (r *Registry) Busy(topicName string) bool {
	if _, ok := r.snapshot()[topicName]; ok {
		return true
	}

	v, ok := r.readers.Load(topicName)
	if !ok {
		return false
	}
	return atomic.LoadInt32(v.(*int32)) > 0
}

// Delete refuses with ErrTopicBusy while topic has a live writer or
// reader, and otherwise delegates to DeleteTopic.
func (r *Registry) Delete(topic Topic) error {
	if r.Busy(topic.Name()) {
		return ErrTopicBusy
	}
	return DeleteTopic(topic)
}
