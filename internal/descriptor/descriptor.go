// Package descriptor decodes raw FileDescriptorProto bytes recovered by the
// scanner and exposes the small set of filename-derivation helpers the
// proto source writer and collaborator layer need.
package descriptor

import (
	"fmt"
	"path"
	"strings"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/descriptorpb"
)

// Syntax identifies the proto language level a file was written against.
type Syntax int

const (
	Proto2 Syntax = iota
	Proto3
)

// Decode unmarshals raw bytes into a FileDescriptorProto. The only failure
// mode is a malformed protobuf payload.
func Decode(data []byte) (*descriptorpb.FileDescriptorProto, error) {
	var fd descriptorpb.FileDescriptorProto
	if err := proto.Unmarshal(data, &fd); err != nil {
		return nil, fmt.Errorf("descriptor: failed to parse FileDescriptorProto: %w", err)
	}
	return &fd, nil
}

// SyntaxOf classifies a decoded file by its syntax field, defaulting an
// empty string to proto2 per the protobuf spec.
func SyntaxOf(fd *descriptorpb.FileDescriptorProto) (Syntax, error) {
	switch fd.GetSyntax() {
	case "", "proto2":
		return Proto2, nil
	case "proto3":
		return Proto3, nil
	default:
		return 0, fmt.Errorf("descriptor: unsupported syntax %q", fd.GetSyntax())
	}
}

func (s Syntax) String() string {
	if s == Proto3 {
		return "proto3"
	}
	return "proto2"
}

// Filename returns the descriptor's declared name, falling back to a
// synthetic name if it is empty.
func Filename(fd *descriptorpb.FileDescriptorProto) string {
	if name := fd.GetName(); name != "" {
		return name
	}
	return "unknown.proto"
}

// OutputFilename derives the path a reconstructed .proto file should be
// written to. When go_package has the "import/path;pkg" form, the output
// path is the import path with the descriptor's own basename appended
// (e.g. go_package "github.com/example/fooservice;foopb" and name
// "original.proto" yield "github.com/example/fooservice/original.proto");
// otherwise it falls back to the descriptor's own name.
func OutputFilename(fd *descriptorpb.FileDescriptorProto) string {
	goPkg := fd.GetOptions().GetGoPackage()
	idx := strings.LastIndex(goPkg, ";")
	if idx < 0 {
		return Filename(fd)
	}
	importPath := goPkg[:idx]
	if importPath == "" {
		return Filename(fd)
	}
	return importPath + "/" + path.Base(Filename(fd))
}
