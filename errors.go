// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package streamrelay

import (
	"fmt"
	"io"
	"log"
	"os"
)

// SRError is a known streamrelay error with an associated status code.
// StatusCode is not an HTTP status; it is a small fixed vocabulary a
// transport can map onto whatever status space it exposes (the HTTP
// status surface reuses it directly; SESP responses only ever surface
// the message text).
type SRError interface {
	Error() string
	String() string
	StatusCode() int
}

type srError struct {
	Status int    `json:"status"`
	Err    string `json:"error"`
}

func newErr(status int, message string) SRError {
	return &srError{status, message}
}

// StatusCode returns the error kind's status code.
func (e *srError) StatusCode() int {
	return e.Status
}

// Error returns the error string.
func (e *srError) Error() string {
	return e.Err
}

// String implements the Stringer interface for SRError.
func (e *srError) String() string {
	return fmt.Sprintf("srerror: %s", e.Err)
}

var (
	// ErrUnknown is returned when an underlying standard Go error reaches the user.
	ErrUnknown = newErr(500, "streamrelay: unknown error")
	// ErrInvalidDir is returned when the data folder provided does not exist or is not writable.
	ErrInvalidDir = newErr(500, "streamrelay: invalid data directory")

	// ErrBadRequest is returned when invalid parameters are received.
	ErrBadRequest = newErr(400, "streamrelay: bad request")
	// ErrInvalidTopicName is returned when a topic name contains a path separator or NUL byte.
	ErrInvalidTopicName = newErr(400, "streamrelay: invalid topic name")
	// ErrInvalidOffset is returned when the requested offset can not be parsed into a number.
	ErrInvalidOffset = newErr(400, "streamrelay: invalid offset")
	// ErrInvalidCommand is returned when a SESP line fails to parse (§4.6).
	ErrInvalidCommand = newErr(400, "streamrelay: invalid command")
	// ErrNotSelected is returned when a publish/read/set-offset command arrives before SelectTopic (§4.7).
	ErrNotSelected = newErr(412, "streamrelay: no topic selected")

	// ErrTopicExists is returned when trying to create an already existing topic with conflicting settings.
	ErrTopicExists = newErr(400, "streamrelay: topic exists")
	// ErrTopicNotFound is returned when addressing a non-existing topic.
	ErrTopicNotFound = newErr(404, "streamrelay: topic not found")
	// ErrTopicBusy is returned when deleting a topic that has a live writer or reader attached (§9.3).
	ErrTopicBusy = newErr(409, "streamrelay: topic busy")

	// ErrNoData is returned when a read is attempted past the flushed watermark.
	ErrNoData = newErr(404, "streamrelay: no data")
	// ErrCorruptMetadata is returned when metadata.toml exists but fails to parse.
	ErrCorruptMetadata = newErr(500, "streamrelay: corrupt metadata")
	// ErrCorruptSegment is returned when a flushed offset's line is missing from its segment file.
	ErrCorruptSegment = newErr(500, "streamrelay: corrupt segment")
)

var errmap = map[error]SRError{
	io.EOF: ErrCorruptSegment,
}

// logClose calls Close on c and logs any error, for deferred cleanup
// of a file or connection already past the point where a caller could
// usefully act on a close failure.
func logClose(c io.Closer) {
	if err := c.Close(); err != nil {
		log.Printf("error: %s", err)
	}
}

// ExtErr maps external errors onto the fixed streamrelay error vocabulary (§7).
func ExtErr(err error) SRError {
	if err == nil {
		return nil
	}

	if srerr, ok := err.(SRError); ok {
		return srerr
	}

	if os.IsNotExist(err) {
		return ErrTopicNotFound
	}

	if srerr, ok := errmap[err]; ok {
		return srerr
	}

	log.Printf("error: unmapped error: %s", err)
	return ErrUnknown
}
