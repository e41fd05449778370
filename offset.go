// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package streamrelay

import (
	"path/filepath"
	"strconv"
)

// OffsetToPath is the pure function of §4.1/§3: given a manifest and a
// non-negative offset it returns the path of the segment file holding
// that offset. It performs no I/O and has no failure mode.
//
// file_number = offset / N
// segment_dir = file_number mod S
// file_name   = (file_number * N) + ".txt"
// line_index  = offset mod N  (returned by LineIndex, not here)
func OffsetToPath(meta TopicMetaData, offset uint64) string {
	n := meta.NumOfMsgPerFile
	fileNumber := offset / n
	segmentDir := fileNumber % meta.NumOfSegments
	fileName := strconv.FormatUint(fileNumber*n, 10) + ".txt"

	return filepath.Join(meta.Topic.SegmentDir(segmentDir), fileName)
}

// LineIndex returns the zero-based line within its segment file that
// offset maps to (§4.5 step 4).
func LineIndex(meta TopicMetaData, offset uint64) uint64 {
	return offset % meta.NumOfMsgPerFile
}

// FileNumber returns the segment's first offset, i.e. the numeric stem
// of the ".txt" file name that offset falls into.
func FileNumber(meta TopicMetaData, offset uint64) uint64 {
	return (offset / meta.NumOfMsgPerFile) * meta.NumOfMsgPerFile
}
