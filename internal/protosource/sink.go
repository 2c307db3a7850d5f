package protosource

import (
	"google.golang.org/protobuf/types/descriptorpb"
)

// Sink receives structural write events as Reconstruct walks a descriptor.
// The .proto text itself is built by the walker, not by a Sink: Reconstruct
// notifies NullSink, and ReconstructTo notifies the caller's sink (e.g.
// StatsSink, which only counts elements) alongside rendering the text.
type Sink interface {
	WriteFile(fd *descriptorpb.FileDescriptorProto)
	WriteMessage(m *descriptorpb.DescriptorProto)
	WriteField(f *descriptorpb.FieldDescriptorProto)
	WriteEnum(e *descriptorpb.EnumDescriptorProto)
	WriteService(s *descriptorpb.ServiceDescriptorProto)
	WriteMethod(m *descriptorpb.MethodDescriptorProto)
	WriteOneof(o *descriptorpb.OneofDescriptorProto)
}

// NullSink discards every event.
type NullSink struct{}

func (NullSink) WriteFile(*descriptorpb.FileDescriptorProto)       {}
func (NullSink) WriteMessage(*descriptorpb.DescriptorProto)        {}
func (NullSink) WriteField(*descriptorpb.FieldDescriptorProto)     {}
func (NullSink) WriteEnum(*descriptorpb.EnumDescriptorProto)       {}
func (NullSink) WriteService(*descriptorpb.ServiceDescriptorProto) {}
func (NullSink) WriteMethod(*descriptorpb.MethodDescriptorProto)   {}
func (NullSink) WriteOneof(*descriptorpb.OneofDescriptorProto)     {}

// StatsSink counts how many of each element type it observes, useful for
// quick summaries without rendering full source.
type StatsSink struct {
	Messages int
	Fields   int
	Enums    int
	Services int
	Methods  int
}

func (s *StatsSink) WriteFile(*descriptorpb.FileDescriptorProto)   {}
func (s *StatsSink) WriteMessage(*descriptorpb.DescriptorProto)    { s.Messages++ }
func (s *StatsSink) WriteField(*descriptorpb.FieldDescriptorProto) { s.Fields++ }
func (s *StatsSink) WriteEnum(*descriptorpb.EnumDescriptorProto)   { s.Enums++ }
func (s *StatsSink) WriteService(*descriptorpb.ServiceDescriptorProto) {
	s.Services++
}
func (s *StatsSink) WriteMethod(*descriptorpb.MethodDescriptorProto) { s.Methods++ }
func (s *StatsSink) WriteOneof(*descriptorpb.OneofDescriptorProto)   {}
