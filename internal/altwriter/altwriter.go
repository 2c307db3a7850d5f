// Package altwriter renders a recovered FileDescriptorProto with
// jhump/protoreflect/v2's protoprint pretty-printer instead of the
// always-succeeding structural writer in internal/protosource. It
// produces more idiomatic formatting (comment placement, option
// grouping) but requires the descriptor's imports to resolve, which
// recovered fragments frequently cannot satisfy — callers should treat
// failures here as expected and fall back to the structural writer.
package altwriter

import (
	"fmt"
	"strings"

	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/reflect/protoregistry"
	"google.golang.org/protobuf/types/descriptorpb"

	"github.com/jhump/protoreflect/v2/protoprint"
)

// Render builds a resolvable protoreflect.FileDescriptor from fd and
// pretty-prints it. Only google.golang.org/protobuf's well-known types
// are available as import targets; any other dependency fails the
// resolution and Render returns an error so the caller can fall back to
// the structural writer.
func Render(fd *descriptorpb.FileDescriptorProto) (string, error) {
	file, err := protodesc.NewFile(fd, protoregistry.GlobalFiles)
	if err != nil {
		return "", fmt.Errorf("resolve descriptor for pretty-print: %w", err)
	}

	p := protoprint.Printer{}
	var out strings.Builder
	if err := p.PrintProtoFile(file, &out); err != nil {
		return "", fmt.Errorf("print proto file: %w", err)
	}
	return out.String(), nil
}
