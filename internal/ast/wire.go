package ast

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"gopkg.in/yaml.v3"

	"weave/internal/source"
)

// Document is a serialized AST: the parser's output or the compiled program.
type Document struct {
	File   string `yaml:"file,omitempty" json:"file,omitempty"`
	Source string `yaml:"source,omitempty" json:"source,omitempty"`
	Root   *Node  `yaml:"-" json:"-"`
}

// DecodeError points at the offending line of a serialized document.
type DecodeError struct {
	Line   int
	Column int
	Msg    string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("line %d:%d: %s", e.Line, e.Column, e.Msg)
}

func errAt(y *yaml.Node, format string, args ...any) error {
	return &DecodeError{Line: y.Line, Column: y.Column, Msg: fmt.Sprintf(format, args...)}
}

// Decode parses a YAML (or JSON) document. Spans are bound to file.
// A bare node mapping at the top level is accepted as the root.
func Decode(data []byte, file source.FileID) (*Document, error) {
	var top yaml.Node
	if err := yaml.Unmarshal(data, &top); err != nil {
		return nil, fmt.Errorf("decode ast: %w", err)
	}
	if top.Kind != yaml.DocumentNode || len(top.Content) == 0 {
		return nil, fmt.Errorf("decode ast: empty document")
	}
	body := top.Content[0]
	if body.Kind != yaml.MappingNode {
		return nil, errAt(body, "expected mapping at top level")
	}
	doc := &Document{}
	if lookup(body, "type") != nil {
		root, err := decodeNode(body, file)
		if err != nil {
			return nil, err
		}
		doc.Root = root
		return doc, nil
	}
	for i := 0; i+1 < len(body.Content); i += 2 {
		key, val := body.Content[i], body.Content[i+1]
		switch key.Value {
		case "file":
			doc.File = val.Value
		case "source":
			doc.Source = val.Value
		case "root":
			root, err := decodeNode(val, file)
			if err != nil {
				return nil, err
			}
			doc.Root = root
		default:
			return nil, errAt(key, "unknown document key %q", key.Value)
		}
	}
	if doc.Root == nil {
		return nil, errAt(body, "document has no root")
	}
	return doc, nil
}

func lookup(m *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return m.Content[i+1]
		}
	}
	return nil
}

func decodeNode(y *yaml.Node, file source.FileID) (*Node, error) {
	if y.Kind == yaml.ScalarNode && y.Tag == "!!null" {
		return nil, nil
	}
	if y.Kind != yaml.MappingNode {
		return nil, errAt(y, "expected node mapping")
	}
	typ := lookup(y, "type")
	if typ == nil {
		return nil, errAt(y, "node without type")
	}
	kind, ok := KindByName(typ.Value)
	if !ok {
		return nil, errAt(typ, "unknown node type %q", typ.Value)
	}
	n := New(kind, source.Span{File: file})
	for i := 0; i+1 < len(y.Content); i += 2 {
		key, val := y.Content[i], y.Content[i+1]
		switch key.Value {
		case "type":
		case "name":
			n.Name = val.Value
		case "value":
			if fieldIndex(kind, FieldValue) >= 0 {
				if err := decodeField(n, key, val, file); err != nil {
					return nil, err
				}
				continue
			}
			n.Value = val.Value
		case "op":
			n.Op = val.Value
		case "flags":
			for _, f := range val.Content {
				flag, ok := FlagByName(f.Value)
				if !ok {
					return nil, errAt(f, "unknown flag %q", f.Value)
				}
				n.Flags |= flag
			}
		case "span":
			if err := decodeSpan(&n.Span, val); err != nil {
				return nil, err
			}
		default:
			if err := decodeField(n, key, val, file); err != nil {
				return nil, err
			}
		}
	}
	return n, nil
}

func decodeField(n *Node, key, val *yaml.Node, file source.FileID) error {
	spec, _, ok := FieldByName(n.Kind, key.Value)
	if !ok {
		return errAt(key, "%s has no field %q", n.Kind, key.Value)
	}
	if !spec.List {
		// одиночный слот допускает и список из одного элемента
		if val.Kind == yaml.SequenceNode {
			if len(val.Content) > 1 {
				return errAt(val, "%s.%s holds a single node", n.Kind, spec.Name)
			}
			if len(val.Content) == 0 {
				return nil
			}
			val = val.Content[0]
		}
		child, err := decodeNode(val, file)
		if err != nil {
			return err
		}
		n.SetChild(spec.Name, child)
		return nil
	}
	if val.Kind != yaml.SequenceNode {
		return errAt(val, "%s.%s expects a list", n.Kind, spec.Name)
	}
	list := make([]*Node, 0, len(val.Content))
	for _, item := range val.Content {
		child, err := decodeNode(item, file)
		if err != nil {
			return err
		}
		if child != nil {
			list = append(list, child)
		}
	}
	n.SetChildren(spec.Name, list)
	return nil
}

func decodeSpan(sp *source.Span, val *yaml.Node) error {
	if val.Kind != yaml.SequenceNode || len(val.Content) != 2 {
		return errAt(val, "span must be [start, end]")
	}
	start, err := strconv.ParseUint(val.Content[0].Value, 10, 32)
	if err != nil {
		return errAt(val, "span start: %v", err)
	}
	end, err := strconv.ParseUint(val.Content[1].Value, 10, 32)
	if err != nil {
		return errAt(val, "span end: %v", err)
	}
	sp.Start, sp.End = uint32(start), uint32(end)
	return nil
}

// Output formats for Encode.
const (
	FormatYAML = "yaml"
	FormatJSON = "json"
)

// Encode writes doc in the requested format.
func Encode(w io.Writer, doc *Document, format string) error {
	tree := map[string]any{"root": ToMap(doc.Root)}
	if doc.File != "" {
		tree["file"] = doc.File
	}
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(tree)
	case FormatYAML, "":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(tree); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

// ToMap converts n into plain maps and slices in the serialized layout.
func ToMap(n *Node) map[string]any {
	if n == nil {
		return nil
	}
	m := map[string]any{"type": n.Kind.String()}
	if n.Name != "" {
		m["name"] = n.Name
	}
	if n.Value != "" {
		m["value"] = n.Value
	}
	if n.Op != "" {
		m["op"] = n.Op
	}
	if names := n.Flags.Names(); len(names) > 0 {
		m["flags"] = names
	}
	if !n.Span.Empty() {
		m["span"] = []uint32{n.Span.Start, n.Span.End}
	}
	for _, spec := range FieldsOf(n.Kind) {
		if spec.List {
			list := n.Children(spec.Name)
			if len(list) == 0 {
				continue
			}
			items := make([]any, 0, len(list))
			for _, c := range list {
				items = append(items, ToMap(c))
			}
			m[string(spec.Name)] = items
			continue
		}
		if c := n.Child(spec.Name); c != nil {
			m[string(spec.Name)] = ToMap(c)
		}
	}
	return m
}
