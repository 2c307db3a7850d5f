package wire

import "testing"

func TestDecodeVarintSingleByte(t *testing.T) {
	v, n, err := DecodeVarint([]byte{0x08})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != 8 || n != 1 {
		t.Fatalf("got (%d, %d), want (8, 1)", v, n)
	}
}

func TestDecodeVarintMultiByte(t *testing.T) {
	v, n, err := DecodeVarint([]byte{0xAC, 0x02})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != 300 || n != 2 {
		t.Fatalf("got (%d, %d), want (300, 2)", v, n)
	}
}

func TestDecodeVarintMax(t *testing.T) {
	data := []byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0x01}
	v, n, err := DecodeVarint(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != ^uint64(0) || n != 10 {
		t.Fatalf("got (%d, %d), want (MaxUint64, 10)", v, n)
	}
}

func TestDecodeVarintTooLong(t *testing.T) {
	data := []byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0x01}
	if _, _, err := DecodeVarint(data); err == nil {
		t.Fatal("expected error for 11-byte varint")
	}
}

func TestConsumeVarintField(t *testing.T) {
	data := []byte{0x08, 0x96, 0x01}
	num, n, err := ConsumeField(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if num != 1 || n != 3 {
		t.Fatalf("got (%d, %d), want (1, 3)", num, n)
	}
}

func TestConsumeLenField(t *testing.T) {
	data := []byte{0x0A, 0x05, 'h', 'e', 'l', 'l', 'o'}
	num, n, err := ConsumeField(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if num != 1 || n != 7 {
		t.Fatalf("got (%d, %d), want (1, 7)", num, n)
	}
}

func TestConsumeFixed32Field(t *testing.T) {
	data := []byte{0x0D, 0x01, 0x02, 0x03, 0x04}
	num, n, err := ConsumeField(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if num != 1 || n != 5 {
		t.Fatalf("got (%d, %d), want (1, 5)", num, n)
	}
}

func TestConsumeFixed64Field(t *testing.T) {
	data := []byte{0x09, 0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08}
	num, n, err := ConsumeField(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if num != 1 || n != 9 {
		t.Fatalf("got (%d, %d), want (1, 9)", num, n)
	}
}

func TestConsumeGroupField(t *testing.T) {
	// Field 1, wire type 3 (start group).
	data := []byte{0x0B}
	num, n, err := ConsumeField(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if num != 1 || n != 1 {
		t.Fatalf("got (%d, %d), want (1, 1)", num, n)
	}
}

func TestInvalidFieldNumberZero(t *testing.T) {
	data := []byte{0x00, 0x01}
	if _, _, err := ConsumeField(data); err == nil {
		t.Fatal("expected error for field number 0")
	}
}

func TestInvalidWireType(t *testing.T) {
	// field 1, wire type 6 (undefined)
	data := []byte{0x0E}
	if _, _, err := ConsumeField(data); err == nil {
		t.Fatal("expected error for wire type 6")
	}
}

func TestConsumeFieldEmptyData(t *testing.T) {
	if _, _, err := ConsumeField(nil); err != ErrEmptyData {
		t.Fatalf("got %v, want ErrEmptyData", err)
	}
}

func TestConsumeFieldShortI64(t *testing.T) {
	data := []byte{0x09, 0x01, 0x02}
	if _, _, err := ConsumeField(data); err == nil {
		t.Fatal("expected short buffer error")
	}
}

func TestConsumeFieldShortLen(t *testing.T) {
	data := []byte{0x0A, 0x05, 'h', 'i'}
	if _, _, err := ConsumeField(data); err == nil {
		t.Fatal("expected short buffer error")
	}
}

func TestConsumeFields(t *testing.T) {
	// Two fields back to back: varint field then a len field.
	data := []byte{0x08, 0x01, 0x12, 0x02, 'o', 'k'}
	n := ConsumeFields(data)
	if n != len(data) {
		t.Fatalf("got %d, want %d", n, len(data))
	}
}

func TestConsumeFieldsStopsAtError(t *testing.T) {
	data := []byte{0x08, 0x01, 0xFF}
	n := ConsumeFields(data)
	if n != 2 {
		t.Fatalf("got %d, want 2", n)
	}
}

func TestConsumeFieldsEmpty(t *testing.T) {
	if n := ConsumeFields(nil); n != 0 {
		t.Fatalf("got %d, want 0", n)
	}
}
