// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package streamrelay

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

const metadataFile = "metadata.toml"

// DefaultNumMsgPerFile is the segment capacity used when a caller does
// not specify one (§3).
const DefaultNumMsgPerFile = 32

// DefaultNumSegments is the segment directory fan-out used when a
// caller does not specify one (§3).
const DefaultNumSegments = 64

// Topic identifies a log by name. Identity is immutable for the life
// of the topic: name, path and metadata path never change once set.
type Topic struct {
	name         string
	path         string
	metadataPath string
}

// NewTopic constructs a Topic identity rooted at root. It performs no I/O.
func NewTopic(name, root string) (Topic, error) {
	if err := validateTopicName(name); err != nil {
		return Topic{}, err
	}

	path := filepath.Join(root, name)
	return Topic{
		name:         name,
		path:         path,
		metadataPath: filepath.Join(path, metadataFile),
	}, nil
}

func validateTopicName(name string) error {
	if name == "" {
		return ErrInvalidTopicName
	}
	if strings.ContainsAny(name, "/\\\x00") {
		return ErrInvalidTopicName
	}
	return nil
}

// Name returns the topic's name.
func (t Topic) Name() string { return t.name }

// Path returns the topic's root directory.
func (t Topic) Path() string { return t.path }

// MetadataPath returns the path to the topic's manifest file.
func (t Topic) MetadataPath() string { return t.metadataPath }

// SegmentDir returns the path to one of the topic's num_of_segments
// striped segment directories.
func (t Topic) SegmentDir(n uint64) string {
	return filepath.Join(t.path, strconv.FormatUint(n, 10))
}

// TopicWithOffset pairs a topic identity with a single offset into it,
// grounded on original_source/src/types/mod.rs's type of the same
// name: a convenience value describing "this topic, as of this offset".
// The subscriber handler logs one on every SetReadOffset.
type TopicWithOffset struct {
	Topic  Topic
	Offset uint64
}

// NewTopicWithOffset pairs topic with offset.
func NewTopicWithOffset(topic Topic, offset uint64) TopicWithOffset {
	return TopicWithOffset{Topic: topic, Offset: offset}
}

// TopicMetaData is the manifest (§3/§4.2): the serialized record that is
// the sole authority for a topic's flushed watermark.
type TopicMetaData struct {
	Topic             Topic
	NumOfMsgPerFile   uint64
	NumOfSegments     uint64
	LastFlushedOffset *uint64
}

// manifestDoc is the on-disk TOML shape (§6). Topic's fields are
// unexported so a parallel, TOML-tagged document carries them across
// serialize/deserialize instead of marshaling Topic directly.
type manifestDoc struct {
	TopicDoc struct {
		Name         string `toml:"name"`
		Path         string `toml:"path"`
		MetadataPath string `toml:"metadata_path"`
	} `toml:"topic"`
	NumOfMsgPerFile   uint64  `toml:"num_of_msg_per_file"`
	LastFlushedOffset *uint64 `toml:"last_flushed_offset,omitempty"`
	NumOfSegments     uint64  `toml:"num_of_segments"`
}

// NewTopicMetaData builds a manifest for topic with explicit tunables.
func NewTopicMetaData(topic Topic, numOfMsgPerFile, numOfSegments uint64) TopicMetaData {
	return TopicMetaData{
		Topic:           topic,
		NumOfMsgPerFile: numOfMsgPerFile,
		NumOfSegments:   numOfSegments,
	}
}

// NewTopicMetaDataDefaults builds a manifest for topic using §3's defaults.
func NewTopicMetaDataDefaults(topic Topic) TopicMetaData {
	return NewTopicMetaData(topic, DefaultNumMsgPerFile, DefaultNumSegments)
}

func (m TopicMetaData) toDoc() manifestDoc {
	var doc manifestDoc
	doc.TopicDoc.Name = m.Topic.name
	doc.TopicDoc.Path = m.Topic.path
	doc.TopicDoc.MetadataPath = m.Topic.metadataPath
	doc.NumOfMsgPerFile = m.NumOfMsgPerFile
	doc.NumOfSegments = m.NumOfSegments
	doc.LastFlushedOffset = m.LastFlushedOffset
	return doc
}

func fromDoc(doc manifestDoc) TopicMetaData {
	return TopicMetaData{
		Topic: Topic{
			name:         doc.TopicDoc.Name,
			path:         doc.TopicDoc.Path,
			metadataPath: doc.TopicDoc.MetadataPath,
		},
		NumOfMsgPerFile:   doc.NumOfMsgPerFile,
		NumOfSegments:     doc.NumOfSegments,
		LastFlushedOffset: doc.LastFlushedOffset,
	}
}

// Serialize encodes the manifest as TOML (§4.2/§6).
func (m TopicMetaData) Serialize() ([]byte, error) {
	return toml.Marshal(m.toDoc())
}

// DeserializeTopicMetaData decodes a TOML-encoded manifest.
func DeserializeTopicMetaData(b []byte) (TopicMetaData, error) {
	var doc manifestDoc
	if err := toml.Unmarshal(b, &doc); err != nil {
		return TopicMetaData{}, ErrCorruptMetadata
	}
	return fromDoc(doc), nil
}

// FromDisk reads and deserializes topic's manifest (§4.2). It returns
// ErrTopicNotFound if the manifest is absent and ErrCorruptMetadata if
// it can not be parsed.
func FromDisk(topic Topic) (TopicMetaData, error) {
	b, err := os.ReadFile(topic.MetadataPath())
	if err != nil {
		if os.IsNotExist(err) {
			return TopicMetaData{}, ErrTopicNotFound
		}
		return TopicMetaData{}, ExtErr(err)
	}

	return DeserializeTopicMetaData(b)
}
