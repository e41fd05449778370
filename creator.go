// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package streamrelay

import (
	"log"
	"os"
)

// CreateTopic materializes the directory tree and initial manifest for
// a new topic (§4.3/C3): it creates topic.Path, writes metadata.toml,
// and creates num_of_segments child directories named "0".."S-1".
//
// Re-creating an existing topic with identical NumOfMsgPerFile and
// NumOfSegments is a successful no-op. Re-creating with conflicting
// parameters returns ErrTopicExists and leaves the existing tree
// untouched (§4.3, §9 Open Question #2).
func CreateTopic(meta TopicMetaData) (err error) {
	defer func() {
		if err != nil {
			log.Printf("warn: failed to create topic %q: %s", meta.Topic.Name(), err)
		}
	}()

	existing, err := FromDisk(meta.Topic)
	switch {
	case err == nil:
		if existing.NumOfMsgPerFile != meta.NumOfMsgPerFile || existing.NumOfSegments != meta.NumOfSegments {
			return ErrTopicExists
		}
		log.Printf("info: topic %q already exists, no-op", meta.Topic.Name())
		return nil
	case err != ErrTopicNotFound:
		return err
	}

	if err = os.MkdirAll(meta.Topic.Path(), 0o755); err != nil {
		return ExtErr(err)
	}

	for i := uint64(0); i < meta.NumOfSegments; i++ {
		if err = os.MkdirAll(meta.Topic.SegmentDir(i), 0o755); err != nil {
			return ExtErr(err)
		}
	}

	b, err := meta.Serialize()
	if err != nil {
		return ExtErr(err)
	}

	if err = os.WriteFile(meta.Topic.MetadataPath(), b, 0o644); err != nil {
		return ExtErr(err)
	}

	log.Printf("info: created topic %q with %d segments of %d messages", meta.Topic.Name(), meta.NumOfSegments, meta.NumOfMsgPerFile)
	return nil
}

// DeleteTopic removes the entire topic subtree, returning
// ErrTopicNotFound if the topic directory does not exist. Callers are
// responsible for enforcing §9.3 (refuse deletion while a handler holds
// the topic); see Registry.Delete for the guarded entry point used by
// the broker.
func DeleteTopic(topic Topic) error {
	if _, err := os.Stat(topic.Path()); err != nil {
		return ExtErr(err)
	}

	log.Printf("info: deleting topic %q", topic.Name())
	if err := os.RemoveAll(topic.Path()); err != nil {
		return ExtErr(err)
	}
	return nil
}
