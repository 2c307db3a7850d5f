// Package scanner locates embedded FileDescriptorProto records in an
// arbitrary byte buffer, using only wire-format self-consistency: there is
// no framing envelope to rely on, so the scanner anchors on the literal
// ".proto" filename suffix that every FileDescriptorProto carries in its
// name field and backtracks to the record's start.
package scanner

import (
	"bytes"

	"github.com/binaryforensics/protodig/internal/wire"
)

// protoSuffix is the filename suffix every FileDescriptorProto.name ends
// with.
var protoSuffix = []byte(".proto")

// magicByte is field 1 (name), wire type 2 (LEN): (1 << 3) | 2.
const magicByte = 0x0A

// Result describes a single recovered descriptor.
type Result struct {
	// Data holds the raw FileDescriptorProto bytes.
	Data []byte
	// Start and End give the byte range within the scanned buffer.
	Start, End int
}

// Config bounds the scanner's search.
type Config struct {
	// MaxResults caps the number of results returned; 0 means unlimited.
	MaxResults int
	// MinDescriptorSize and MaxDescriptorSize filter candidate records by
	// byte length, discarding noise and runaway matches.
	MinDescriptorSize int
	MaxDescriptorSize int
}

// DefaultConfig returns the scanner's default bounds: no result cap, a
// 10-byte minimum, and a 10 MiB maximum.
func DefaultConfig() Config {
	return Config{
		MaxResults:        0,
		MinDescriptorSize: 10,
		MaxDescriptorSize: 10 * 1024 * 1024,
	}
}

// Scan walks data looking for embedded FileDescriptorProto records. It
// never returns an error: unparseable candidates are silently skipped, and
// a buffer with no matches yields an empty slice.
func Scan(data []byte, cfg Config) []Result {
	var results []Result
	position := 0

	for position < len(data) {
		remaining := data[position:]
		relPos := bytes.Index(remaining, protoSuffix)
		if relPos < 0 {
			break
		}
		absPos := position + relPos

		if start, ok := findRecordStart(data, absPos); ok {
			recordLen := consumeRecord(data, start)
			if recordLen >= cfg.MinDescriptorSize && recordLen <= cfg.MaxDescriptorSize {
				end := start + recordLen
				results = append(results, Result{
					Data:  append([]byte(nil), data[start:end]...),
					Start: start,
					End:   end,
				})

				if cfg.MaxResults > 0 && len(results) >= cfg.MaxResults {
					break
				}

				position = end
				if position <= absPos {
					// An edge-case start can yield a record that ends before
					// this match; move past the match so it is not found again.
					position = absPos + len(protoSuffix)
				}
				continue
			}
		}

		position = absPos + len(protoSuffix)
	}

	return results
}

// findRecordStart backtracks from a ".proto" match to the 0x0A tag byte
// that begins the record, verifying the length-prefixed filename it
// introduces actually ends at the match.
func findRecordStart(data []byte, protoSuffixPos int) (int, bool) {
	searchStart := protoSuffixPos - 256
	if searchStart < 0 {
		searchStart = 0
	}

	for i := protoSuffixPos - 1; i >= searchStart; i-- {
		if data[i] != magicByte {
			continue
		}
		if i+1 >= len(data) {
			continue
		}

		length, varintLen, err := wire.DecodeVarint(data[i+1:])
		if err != nil {
			continue
		}

		expectedEnd := i + 1 + varintLen + int(length)
		actualEnd := protoSuffixPos + len(protoSuffix)

		if expectedEnd == actualEnd {
			return i, true
		}

		// Edge case: a 10-byte filename can make the length varint's own
		// byte value collide with the magic byte one position earlier.
		if length == 10 && i > 0 && data[i-1] == magicByte {
			return i - 1, true
		}
	}

	return 0, false
}

// consumeRecord walks fields from start until data ends, decoding fails,
// or a second field-1 tag is seen (the start of an adjacent, back-to-back
// descriptor), and returns the number of bytes belonging to this record.
func consumeRecord(data []byte, start int) int {
	position := start
	seenFieldOne := false

	for {
		if position >= len(data) {
			return position - start
		}

		fieldNumber, length, err := wire.ConsumeField(data[position:])
		if err != nil {
			return position - start
		}

		if fieldNumber == 1 {
			if seenFieldOne {
				return position - start
			}
			seenFieldOne = true
		}

		position += length
		if position > len(data) {
			return len(data) - start
		}
	}
}
