package scanner_test

import (
	"testing"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/descriptorpb"

	"github.com/binaryforensics/protodig/internal/descriptor"
	"github.com/binaryforensics/protodig/internal/scanner"
)

// TestScanBackToBackDescriptors reproduces the scanner's back-to-back
// boundary recovery: two complete FileDescriptorProto records placed
// directly adjacent in a buffer, with no framing between them, must be
// recovered as two distinct, correctly bounded results.
func TestScanBackToBackDescriptors(t *testing.T) {
	a := &descriptorpb.FileDescriptorProto{
		Name:   proto.String("x.proto"),
		Syntax: proto.String("proto3"),
		MessageType: []*descriptorpb.DescriptorProto{
			{Name: proto.String("A")},
		},
	}
	b := &descriptorpb.FileDescriptorProto{
		Name:   proto.String("y.proto"),
		Syntax: proto.String("proto3"),
		MessageType: []*descriptorpb.DescriptorProto{
			{Name: proto.String("B")},
		},
	}

	aBytes, err := proto.Marshal(a)
	if err != nil {
		t.Fatalf("marshal a: %v", err)
	}
	bBytes, err := proto.Marshal(b)
	if err != nil {
		t.Fatalf("marshal b: %v", err)
	}

	buf := append(append([]byte(nil), aBytes...), bBytes...)

	cfg := scanner.DefaultConfig()
	cfg.MinDescriptorSize = 1
	results := scanner.Scan(buf, cfg)

	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if results[0].End != results[1].Start {
		t.Fatalf("result ranges do not abut: %d != %d", results[0].End, results[1].Start)
	}

	decodedA, err := descriptor.Decode(results[0].Data)
	if err != nil {
		t.Fatalf("decode first result: %v", err)
	}
	decodedB, err := descriptor.Decode(results[1].Data)
	if err != nil {
		t.Fatalf("decode second result: %v", err)
	}

	if decodedA.GetName() != "x.proto" {
		t.Fatalf("first descriptor name = %q, want x.proto", decodedA.GetName())
	}
	if decodedB.GetName() != "y.proto" {
		t.Fatalf("second descriptor name = %q, want y.proto", decodedB.GetName())
	}
}
