package ast

import (
	"fmt"
	"io"
	"strings"
)

// DumpString renders n as an indented tree.
func DumpString(n *Node) string {
	var sb strings.Builder
	dumpNode(&sb, n, "", "")
	return sb.String()
}

// Dump writes the tree form of n to w.
func Dump(w io.Writer, n *Node) error {
	_, err := io.WriteString(w, DumpString(n))
	return err
}

func header(n *Node) string {
	if n == nil {
		return "<nil>"
	}
	var sb strings.Builder
	sb.WriteString(n.Kind.String())
	if n.Name != "" {
		fmt.Fprintf(&sb, " name=%s", n.Name)
	}
	if n.Value != "" {
		fmt.Fprintf(&sb, " value=%q", n.Value)
	}
	if n.Op != "" {
		fmt.Fprintf(&sb, " op=%s", n.Op)
	}
	if names := n.Flags.Names(); len(names) > 0 {
		fmt.Fprintf(&sb, " [%s]", strings.Join(names, ","))
	}
	return sb.String()
}

func dumpNode(sb *strings.Builder, n *Node, indent, label string) {
	sb.WriteString(indent)
	sb.WriteString(label)
	sb.WriteString(header(n))
	sb.WriteByte('\n')
	if n == nil {
		return
	}
	inner := indent + "  "
	for _, spec := range FieldsOf(n.Kind) {
		if spec.List {
			list := n.Children(spec.Name)
			if len(list) == 0 {
				continue
			}
			fmt.Fprintf(sb, "%s%s:\n", inner, spec.Name)
			for _, c := range list {
				dumpNode(sb, c, inner+"  ", "- ")
			}
			continue
		}
		if c := n.Child(spec.Name); c != nil {
			dumpNode(sb, c, inner, string(spec.Name)+": ")
		}
	}
}
