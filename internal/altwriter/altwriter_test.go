package altwriter

import (
	"strings"
	"testing"

	"google.golang.org/protobuf/types/descriptorpb"
)

func TestRenderSelfContainedMessage(t *testing.T) {
	syntax := "proto3"
	name := "sample.proto"
	fieldName := "s"
	fieldNum := int32(1)
	fieldType := descriptorpb.FieldDescriptorProto_TYPE_STRING
	fieldLabel := descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL
	msgName := "M"

	fd := &descriptorpb.FileDescriptorProto{
		Name:   &name,
		Syntax: &syntax,
		MessageType: []*descriptorpb.DescriptorProto{
			{
				Name: &msgName,
				Field: []*descriptorpb.FieldDescriptorProto{
					{Name: &fieldName, Number: &fieldNum, Type: &fieldType, Label: &fieldLabel},
				},
			},
		},
	}

	out, err := Render(fd)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(out, "message M") {
		t.Errorf("expected message M in output, got %q", out)
	}
}

func TestRenderFailsOnUnresolvableImport(t *testing.T) {
	syntax := "proto3"
	name := "broken.proto"
	fd := &descriptorpb.FileDescriptorProto{
		Name:       &name,
		Syntax:     &syntax,
		Dependency: []string{"nonexistent/missing.proto"},
	}

	if _, err := Render(fd); err == nil {
		t.Fatal("expected an error for an unresolvable import")
	}
}
