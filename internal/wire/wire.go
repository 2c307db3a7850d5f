// Package wire implements the low-level protobuf wire format primitives
// needed to locate record boundaries in binary data that carries no framing
// envelope: varint decoding, tag decoding, and single-field consumption.
package wire

import "fmt"

// WireType identifies how a field's value is encoded on the wire.
type WireType uint8

const (
	Varint     WireType = 0
	I64        WireType = 1
	Len        WireType = 2
	StartGroup WireType = 3
	EndGroup   WireType = 4
	I32        WireType = 5
)

// MaxFieldNumber is the largest valid protobuf field number (2^29 - 1).
const MaxFieldNumber = 536_870_911

// ErrEmptyData is returned by ConsumeField when given a zero-length slice.
var ErrEmptyData = fmt.Errorf("wire: empty data")

// WireTypeError reports an unrecognized wire type value.
type WireTypeError struct {
	Value uint8
}

func (e *WireTypeError) Error() string {
	return fmt.Sprintf("wire: unknown wire type: %d", e.Value)
}

// FieldNumberError reports a field number outside [1, MaxFieldNumber].
type FieldNumberError struct {
	Number uint32
	Max    uint32
}

func (e *FieldNumberError) Error() string {
	return fmt.Sprintf("wire: invalid field number %d (max %d)", e.Number, e.Max)
}

// VarintError reports a varint that did not terminate within 10 bytes or
// ran out of input.
type VarintError struct {
	Offset int
}

func (e *VarintError) Error() string {
	return fmt.Sprintf("wire: failed to decode varint at offset %d", e.Offset)
}

// ShortBufferError reports a fixed-width or length-delimited field whose
// declared size exceeds the remaining buffer.
type ShortBufferError struct {
	Offset int
	Detail string
}

func (e *ShortBufferError) Error() string {
	return fmt.Sprintf("wire: short buffer at offset %d: %s", e.Offset, e.Detail)
}

func wireTypeFromTag(tag uint64) (WireType, error) {
	v := uint8(tag & 0x07)
	switch v {
	case 0, 1, 2, 3, 4, 5:
		return WireType(v), nil
	default:
		return 0, &WireTypeError{Value: v}
	}
}

// DecodeVarint decodes a base-128 little-endian varint from the front of
// data. It returns the decoded value and the number of bytes consumed.
// Varints longer than 10 bytes, or that run out of input before the
// continuation bit clears, are reported as errors.
func DecodeVarint(data []byte) (uint64, int, error) {
	var result uint64
	var shift uint

	for i, b := range data {
		if i >= 10 {
			return 0, 0, &VarintError{Offset: i}
		}
		result |= uint64(b&0x7F) << shift
		shift += 7
		if b&0x80 == 0 {
			return result, i + 1, nil
		}
	}
	return 0, 0, &VarintError{Offset: len(data)}
}

// ConsumeField decodes a single protobuf field from the front of data and
// returns its field number and the total number of bytes consumed
// (tag plus value). Group wire types contribute zero value bytes; the tag
// alone marks them.
func ConsumeField(data []byte) (fieldNumber uint32, consumed int, err error) {
	if len(data) == 0 {
		return 0, 0, ErrEmptyData
	}

	tag, tagLen, err := DecodeVarint(data)
	if err != nil {
		return 0, 0, fmt.Errorf("wire: failed to decode field tag: %w", err)
	}

	wt, err := wireTypeFromTag(tag)
	if err != nil {
		return 0, 0, err
	}

	number := uint32(tag >> 3)
	if number == 0 || number > MaxFieldNumber {
		return 0, 0, &FieldNumberError{Number: number, Max: MaxFieldNumber}
	}

	var valueLen int
	switch wt {
	case Varint:
		_, n, err := DecodeVarint(data[tagLen:])
		if err != nil {
			return 0, 0, fmt.Errorf("wire: failed to decode varint value: %w", err)
		}
		valueLen = n
	case I64:
		if len(data) < tagLen+8 {
			return 0, 0, &ShortBufferError{Offset: tagLen, Detail: "not enough bytes for I64"}
		}
		valueLen = 8
	case Len:
		length, lenVarintLen, err := DecodeVarint(data[tagLen:])
		if err != nil {
			return 0, 0, fmt.Errorf("wire: failed to decode length prefix: %w", err)
		}
		have := len(data) - tagLen - lenVarintLen
		if length > uint64(have) {
			return 0, 0, &ShortBufferError{
				Offset: tagLen,
				Detail: fmt.Sprintf("not enough bytes for LEN field (need %d, have %d)", length, have),
			}
		}
		valueLen = lenVarintLen + int(length)
	case StartGroup, EndGroup:
		valueLen = 0
	case I32:
		if len(data) < tagLen+4 {
			return 0, 0, &ShortBufferError{Offset: tagLen, Detail: "not enough bytes for I32"}
		}
		valueLen = 4
	}

	return number, tagLen + valueLen, nil
}

// ConsumeFields walks consecutive fields starting at the front of data,
// stopping at the first decode error or at the end of the buffer, and
// returns the total number of bytes consumed.
func ConsumeFields(data []byte) int {
	position := 0
	for position < len(data) {
		_, n, err := ConsumeField(data[position:])
		if err != nil {
			break
		}
		position += n
	}
	return position
}
