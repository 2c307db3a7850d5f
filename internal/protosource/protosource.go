// Package protosource renders a syntactically faithful .proto source file
// directly from a decoded descriptorpb.FileDescriptorProto. It never
// resolves imports or builds a protoreflect pool: every decision is made
// from the descriptor's own fields, so a file with unresolvable
// dependencies still reconstructs cleanly.
package protosource

import (
	"fmt"
	"strconv"
	"strings"

	"google.golang.org/protobuf/types/descriptorpb"
)

// maxFieldNumber mirrors wire.MaxFieldNumber; it is duplicated here because
// it is a protobuf-language constant independent of wire parsing.
const maxFieldNumber = 536_870_911

// Syntax identifies which proto language level to render against.
type Syntax int

const (
	Proto2 Syntax = iota
	Proto3
)

func (s Syntax) String() string {
	if s == Proto3 {
		return "proto3"
	}
	return "proto2"
}

// Config controls rendering details that do not change semantics.
type Config struct {
	// IndentStr is repeated per nesting level. Defaults to two spaces.
	IndentStr string
}

// DefaultConfig returns the writer's default two-space indentation.
func DefaultConfig() Config {
	return Config{IndentStr: "  "}
}

// ErrUnsupportedSyntax is returned when a descriptor declares a syntax
// other than "", "proto2", or "proto3".
type ErrUnsupportedSyntax struct {
	Syntax string
}

func (e *ErrUnsupportedSyntax) Error() string {
	return fmt.Sprintf("protosource: unsupported syntax %q", e.Syntax)
}

func syntaxOf(fd *descriptorpb.FileDescriptorProto) (Syntax, error) {
	switch fd.GetSyntax() {
	case "", "proto2":
		return Proto2, nil
	case "proto3":
		return Proto3, nil
	default:
		return 0, &ErrUnsupportedSyntax{Syntax: fd.GetSyntax()}
	}
}

// Reconstruct renders fd as .proto source text.
func Reconstruct(fd *descriptorpb.FileDescriptorProto, cfg Config) (string, error) {
	syntax, err := syntaxOf(fd)
	if err != nil {
		return "", err
	}
	if cfg.IndentStr == "" {
		cfg.IndentStr = "  "
	}

	w := &writer{cfg: cfg, sink: NullSink{}}
	w.writeFile(fd, syntax)
	return w.b.String(), nil
}

// ReconstructTo renders fd as .proto source text while also notifying sink
// of each element written, for callers that want structural stats (e.g.
// StatsSink) alongside the rendered text.
func ReconstructTo(fd *descriptorpb.FileDescriptorProto, cfg Config, sink Sink) (string, error) {
	syntax, err := syntaxOf(fd)
	if err != nil {
		return "", err
	}
	if cfg.IndentStr == "" {
		cfg.IndentStr = "  "
	}
	if sink == nil {
		sink = NullSink{}
	}

	w := &writer{cfg: cfg, sink: sink}
	w.writeFile(fd, syntax)
	return w.b.String(), nil
}

type writer struct {
	b     strings.Builder
	cfg   Config
	level int
	sink  Sink
}

func (w *writer) indent()   { w.level++ }
func (w *writer) dedent()   { w.level-- }
func (w *writer) writeIndent() {
	for i := 0; i < w.level; i++ {
		w.b.WriteString(w.cfg.IndentStr)
	}
}

func (w *writer) line(s string) {
	w.writeIndent()
	w.b.WriteString(s)
	w.b.WriteByte('\n')
}

func (w *writer) blank() { w.b.WriteByte('\n') }

func (w *writer) writeFile(fd *descriptorpb.FileDescriptorProto, syntax Syntax) {
	w.sink.WriteFile(fd)

	w.line(fmt.Sprintf(`syntax = "%s";`, syntax))
	w.blank()

	if fd.GetPackage() != "" {
		w.line(fmt.Sprintf("package %s;", fd.GetPackage()))
		w.blank()
	}

	w.writeFileOptions(fd)
	w.writeImports(fd)

	for _, svc := range fd.GetService() {
		w.writeService(svc)
	}
	for _, msg := range fd.GetMessageType() {
		w.writeMessage(msg, syntax)
	}
	for _, enum := range fd.GetEnumType() {
		w.writeEnum(enum)
	}
	for _, ext := range fd.GetExtension() {
		w.writeExtension(ext, syntax)
	}
}

type stringOption struct {
	name string
	val  string
	set  bool
}

type boolOption struct {
	name string
	val  bool
	set  bool
}

func (w *writer) writeFileOptions(fd *descriptorpb.FileDescriptorProto) {
	opts := fd.GetOptions()
	if opts == nil {
		return
	}

	wroteAny := false
	writeString := func(name string, val *string) {
		if val != nil && *val != "" {
			w.b.WriteString(fmt.Sprintf("option %s = \"%s\";\n", name, escapeString(*val)))
			wroteAny = true
		}
	}
	writeBool := func(name string, val *bool) {
		if val != nil {
			w.b.WriteString(fmt.Sprintf("option %s = %t;\n", name, *val))
			wroteAny = true
		}
	}

	writeString("java_package", opts.JavaPackage)
	writeString("java_outer_classname", opts.JavaOuterClassname)
	writeBool("java_multiple_files", opts.JavaMultipleFiles)
	writeBool("java_string_check_utf8", opts.JavaStringCheckUtf8)
	writeString("go_package", opts.GoPackage)
	writeBool("cc_enable_arenas", opts.CcEnableArenas)
	writeString("objc_class_prefix", opts.ObjcClassPrefix)
	writeString("csharp_namespace", opts.CsharpNamespace)
	writeString("swift_prefix", opts.SwiftPrefix)
	writeString("php_class_prefix", opts.PhpClassPrefix)
	writeString("php_namespace", opts.PhpNamespace)
	writeString("php_metadata_namespace", opts.PhpMetadataNamespace)
	writeString("ruby_package", opts.RubyPackage)

	if wroteAny {
		w.blank()
	}
}

func (w *writer) writeImports(fd *descriptorpb.FileDescriptorProto) {
	deps := fd.GetDependency()
	if len(deps) == 0 {
		return
	}

	public := make(map[int]bool)
	for _, i := range fd.GetPublicDependency() {
		public[int(i)] = true
	}
	weak := make(map[int]bool)
	for _, i := range fd.GetWeakDependency() {
		weak[int(i)] = true
	}

	for i, dep := range deps {
		modifier := ""
		switch {
		case public[i]:
			modifier = "public "
		case weak[i]:
			modifier = "weak "
		}
		w.b.WriteString(fmt.Sprintf("import %s\"%s\";\n", modifier, dep))
	}
	w.blank()
}

func (w *writer) writeService(svc *descriptorpb.ServiceDescriptorProto) {
	w.sink.WriteService(svc)

	w.line(fmt.Sprintf("service %s {", svc.GetName()))
	w.indent()
	for _, m := range svc.GetMethod() {
		w.writeMethod(m)
	}
	w.dedent()
	w.line("}")
	w.blank()
}

func (w *writer) writeMethod(m *descriptorpb.MethodDescriptorProto) {
	w.sink.WriteMethod(m)

	input := m.GetInputType()
	if m.GetClientStreaming() {
		input = "stream " + input
	}
	output := m.GetOutputType()
	if m.GetServerStreaming() {
		output = "stream " + output
	}
	w.line(fmt.Sprintf("rpc %s(%s) returns (%s);", m.GetName(), input, output))
}

func (w *writer) writeMessage(msg *descriptorpb.DescriptorProto, syntax Syntax) {
	w.sink.WriteMessage(msg)

	w.line(fmt.Sprintf("message %s {", msg.GetName()))
	w.indent()

	w.writeReservedNames(msg.GetReservedName())
	w.writeMessageReservedRanges(msg.GetReservedRange())

	for _, nested := range msg.GetNestedType() {
		if nested.GetOptions().GetMapEntry() {
			continue
		}
		w.writeMessage(nested, syntax)
	}

	for _, enum := range msg.GetEnumType() {
		w.writeEnum(enum)
	}

	oneofFields := make(map[int32][]*descriptorpb.FieldDescriptorProto)
	for _, f := range msg.GetField() {
		if f.OneofIndex == nil {
			continue
		}
		if isProto3Optional(f, msg) {
			continue
		}
		idx := f.GetOneofIndex()
		oneofFields[idx] = append(oneofFields[idx], f)
	}

	for i, oneof := range msg.GetOneofDecl() {
		if fields := oneofFields[int32(i)]; len(fields) > 0 {
			w.writeOneof(oneof, fields)
		}
	}

	for _, f := range msg.GetField() {
		inRealOneof := f.OneofIndex != nil && !isProto3Optional(f, msg) && len(oneofFields[f.GetOneofIndex()]) > 0
		if !inRealOneof {
			w.writeField(f, syntax, msg)
		}
	}

	for _, ext := range msg.GetExtension() {
		w.writeExtension(ext, syntax)
	}

	for _, r := range msg.GetExtensionRange() {
		end := "max"
		if r.GetEnd() != maxFieldNumber+1 {
			end = strconv.Itoa(int(r.GetEnd()) - 1)
		}
		w.line(fmt.Sprintf("extensions %d to %s;", r.GetStart(), end))
	}

	w.dedent()
	w.line("}")
	w.blank()
}

// isProto3Optional reports whether field belongs to a synthetic oneof,
// protoc's encoding of an explicit proto3 "optional" field. Synthetic
// oneofs are named with a leading underscore.
func isProto3Optional(field *descriptorpb.FieldDescriptorProto, msg *descriptorpb.DescriptorProto) bool {
	if field.OneofIndex == nil {
		return false
	}
	idx := int(field.GetOneofIndex())
	decls := msg.GetOneofDecl()
	if idx < 0 || idx >= len(decls) {
		return false
	}
	return strings.HasPrefix(decls[idx].GetName(), "_")
}

func (w *writer) writeReservedNames(names []string) {
	if len(names) == 0 {
		return
	}
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = "\"" + n + "\""
	}
	w.line("reserved " + strings.Join(quoted, ", ") + ";")
}

// writeMessageReservedRanges renders message-level reserved ranges, whose
// end field is exclusive on the wire (matching descriptor.proto's
// DescriptorProto.ReservedRange).
func (w *writer) writeMessageReservedRanges(ranges []*descriptorpb.DescriptorProto_ReservedRange) {
	if len(ranges) == 0 {
		return
	}
	parts := make([]string, len(ranges))
	for i, r := range ranges {
		if r.GetStart() == r.GetEnd()-1 {
			parts[i] = strconv.Itoa(int(r.GetStart()))
			continue
		}
		end := "max"
		if r.GetEnd() != maxFieldNumber+1 {
			end = strconv.Itoa(int(r.GetEnd()) - 1)
		}
		parts[i] = fmt.Sprintf("%d to %s", r.GetStart(), end)
	}
	w.line("reserved " + strings.Join(parts, ", ") + ";")
}

func (w *writer) writeOneof(oneof *descriptorpb.OneofDescriptorProto, fields []*descriptorpb.FieldDescriptorProto) {
	w.sink.WriteOneof(oneof)

	w.line(fmt.Sprintf("oneof %s {", oneof.GetName()))
	w.indent()
	for _, f := range fields {
		w.line(fmt.Sprintf("%s %s = %d;", fieldTypeName(f), f.GetName(), f.GetNumber()))
	}
	w.dedent()
	w.line("}")
}

func (w *writer) writeField(field *descriptorpb.FieldDescriptorProto, syntax Syntax, msg *descriptorpb.DescriptorProto) {
	w.sink.WriteField(field)

	w.writeIndent()

	label := fieldLabel(field, syntax, msg)
	if label != "" {
		w.b.WriteString(label)
		w.b.WriteByte(' ')
	}

	if mapKV, ok := mapFieldTypes(field, msg); ok {
		w.b.WriteString(fmt.Sprintf("map<%s, %s> %s = %d;\n", fieldTypeName(mapKV[0]), fieldTypeName(mapKV[1]), field.GetName(), field.GetNumber()))
		return
	}

	w.b.WriteString(fmt.Sprintf("%s %s = %d", fieldTypeName(field), field.GetName(), field.GetNumber()))
	w.writeFieldOptions(field, syntax)
	w.b.WriteString(";\n")
}

// isMapField reports whether field is protoc's synthesized view of a map:
// a repeated message field pointing at a nested type flagged map_entry.
func isMapField(field *descriptorpb.FieldDescriptorProto, msg *descriptorpb.DescriptorProto) (*descriptorpb.DescriptorProto, bool) {
	if field.GetLabel() != descriptorpb.FieldDescriptorProto_LABEL_REPEATED {
		return nil, false
	}
	if field.GetType() != descriptorpb.FieldDescriptorProto_TYPE_MESSAGE {
		return nil, false
	}

	typeName := field.GetTypeName()
	for _, nested := range msg.GetNestedType() {
		expected := "." + nested.GetName()
		if strings.HasSuffix(typeName, expected) || typeName == nested.GetName() {
			return nested, nested.GetOptions().GetMapEntry()
		}
	}
	return nil, false
}

func mapFieldTypes(field *descriptorpb.FieldDescriptorProto, msg *descriptorpb.DescriptorProto) ([2]*descriptorpb.FieldDescriptorProto, bool) {
	nested, ok := isMapField(field, msg)
	if !ok {
		return [2]*descriptorpb.FieldDescriptorProto{}, false
	}

	var key, value *descriptorpb.FieldDescriptorProto
	for _, f := range nested.GetField() {
		switch f.GetNumber() {
		case 1:
			key = f
		case 2:
			value = f
		}
	}
	if key == nil || value == nil {
		return [2]*descriptorpb.FieldDescriptorProto{}, false
	}
	return [2]*descriptorpb.FieldDescriptorProto{key, value}, true
}

func fieldLabel(field *descriptorpb.FieldDescriptorProto, syntax Syntax, msg *descriptorpb.DescriptorProto) string {
	switch field.GetLabel() {
	case descriptorpb.FieldDescriptorProto_LABEL_REPEATED:
		if _, ok := isMapField(field, msg); ok {
			return ""
		}
		return "repeated"
	case descriptorpb.FieldDescriptorProto_LABEL_REQUIRED:
		return "required"
	case descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL:
		if syntax == Proto2 {
			return "optional"
		}
		if isProto3Optional(field, msg) {
			return "optional"
		}
		return ""
	default:
		return ""
	}
}

func fieldTypeName(field *descriptorpb.FieldDescriptorProto) string {
	switch field.GetType() {
	case descriptorpb.FieldDescriptorProto_TYPE_DOUBLE:
		return "double"
	case descriptorpb.FieldDescriptorProto_TYPE_FLOAT:
		return "float"
	case descriptorpb.FieldDescriptorProto_TYPE_INT64:
		return "int64"
	case descriptorpb.FieldDescriptorProto_TYPE_UINT64:
		return "uint64"
	case descriptorpb.FieldDescriptorProto_TYPE_INT32:
		return "int32"
	case descriptorpb.FieldDescriptorProto_TYPE_FIXED64:
		return "fixed64"
	case descriptorpb.FieldDescriptorProto_TYPE_FIXED32:
		return "fixed32"
	case descriptorpb.FieldDescriptorProto_TYPE_BOOL:
		return "bool"
	case descriptorpb.FieldDescriptorProto_TYPE_STRING:
		return "string"
	case descriptorpb.FieldDescriptorProto_TYPE_BYTES:
		return "bytes"
	case descriptorpb.FieldDescriptorProto_TYPE_UINT32:
		return "uint32"
	case descriptorpb.FieldDescriptorProto_TYPE_SFIXED32:
		return "sfixed32"
	case descriptorpb.FieldDescriptorProto_TYPE_SFIXED64:
		return "sfixed64"
	case descriptorpb.FieldDescriptorProto_TYPE_SINT32:
		return "sint32"
	case descriptorpb.FieldDescriptorProto_TYPE_SINT64:
		return "sint64"
	case descriptorpb.FieldDescriptorProto_TYPE_GROUP:
		return "group"
	case descriptorpb.FieldDescriptorProto_TYPE_MESSAGE, descriptorpb.FieldDescriptorProto_TYPE_ENUM:
		return field.GetTypeName()
	default:
		return field.GetTypeName()
	}
}

func (w *writer) writeFieldOptions(field *descriptorpb.FieldDescriptorProto, syntax Syntax) {
	var options []string

	if syntax == Proto2 && field.DefaultValue != nil {
		switch field.GetType() {
		case descriptorpb.FieldDescriptorProto_TYPE_STRING, descriptorpb.FieldDescriptorProto_TYPE_BYTES:
			options = append(options, fmt.Sprintf(`default = "%s"`, escapeString(field.GetDefaultValue())))
		default:
			options = append(options, fmt.Sprintf("default = %s", field.GetDefaultValue()))
		}
	}

	if field.JsonName != nil {
		if field.GetJsonName() != toLowerCamelCase(field.GetName()) {
			options = append(options, fmt.Sprintf(`json_name = "%s"`, field.GetJsonName()))
		}
	}

	if opts := field.GetOptions(); opts != nil {
		if opts.Packed != nil {
			options = append(options, fmt.Sprintf("packed = %t", opts.GetPacked()))
		}
		if opts.GetDeprecated() {
			options = append(options, "deprecated = true")
		}
	}

	if len(options) > 0 {
		w.b.WriteString(" [" + strings.Join(options, ", ") + "]")
	}
}

func (w *writer) writeEnum(enum *descriptorpb.EnumDescriptorProto) {
	w.sink.WriteEnum(enum)

	w.line(fmt.Sprintf("enum %s {", enum.GetName()))
	w.indent()

	if enum.GetOptions().GetAllowAlias() {
		w.line("option allow_alias = true;")
	}

	w.writeEnumReservedRanges(enum.GetReservedRange())
	w.writeReservedNames(enum.GetReservedName())

	for _, v := range enum.GetValue() {
		w.writeIndent()
		w.b.WriteString(fmt.Sprintf("%s = %d", v.GetName(), v.GetNumber()))
		if v.GetOptions().GetDeprecated() {
			w.b.WriteString(" [deprecated = true]")
		}
		w.b.WriteString(";\n")
	}

	w.dedent()
	w.line("}")
	w.blank()
}

// writeEnumReservedRanges renders enum reserved ranges. Unlike message
// field numbers, EnumDescriptorProto.EnumReservedRange.end is inclusive on
// the wire, matching descriptor.proto's own documented semantics for enum
// value ranges; a single value is rendered when start == end.
func (w *writer) writeEnumReservedRanges(ranges []*descriptorpb.EnumDescriptorProto_EnumReservedRange) {
	if len(ranges) == 0 {
		return
	}
	parts := make([]string, len(ranges))
	for i, r := range ranges {
		if r.GetStart() == r.GetEnd() {
			parts[i] = strconv.Itoa(int(r.GetStart()))
			continue
		}
		end := "max"
		if r.GetEnd() != int32(1<<31-1) {
			end = strconv.Itoa(int(r.GetEnd()))
		}
		parts[i] = fmt.Sprintf("%d to %s", r.GetStart(), end)
	}
	w.line("reserved " + strings.Join(parts, ", ") + ";")
}

func (w *writer) writeExtension(ext *descriptorpb.FieldDescriptorProto, syntax Syntax) {
	w.line(fmt.Sprintf("extend %s {", ext.GetExtendee()))
	w.indent()

	w.writeIndent()
	switch ext.GetLabel() {
	case descriptorpb.FieldDescriptorProto_LABEL_REPEATED:
		w.b.WriteString("repeated ")
	case descriptorpb.FieldDescriptorProto_LABEL_REQUIRED:
		w.b.WriteString("required ")
	case descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL:
		if syntax == Proto2 {
			w.b.WriteString("optional ")
		}
	}
	w.b.WriteString(fmt.Sprintf("%s %s = %d;\n", fieldTypeName(ext), ext.GetName(), ext.GetNumber()))

	w.dedent()
	w.line("}")
	w.blank()
}
