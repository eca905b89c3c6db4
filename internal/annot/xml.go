package annot

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strings"
)

// node is one element of the parsed annotation tree.
type node struct {
	name     string
	attrs    map[string]string
	text     string
	children []*node
}

// XMLDoc is a Doc backed by a parsed annotation XML document. The zero-copy
// Subtrees results share nodes with the parent document; the tree is
// read-only after parsing.
type XMLDoc struct {
	root *node
}

// LoadXML parses the annotation document at path.
func LoadXML(path string) (*XMLDoc, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open annotation file: %w", err)
	}
	defer f.Close()

	doc, err := ParseXML(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse annotation file %s: %w", path, err)
	}
	return doc, nil
}

// ParseXML parses an annotation document from r.
func ParseXML(r io.Reader) (*XMLDoc, error) {
	dec := xml.NewDecoder(r)

	var root *node
	var stack []*node

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("invalid XML: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			n := &node{name: t.Name.Local}
			if len(t.Attr) > 0 {
				n.attrs = make(map[string]string, len(t.Attr))
				for _, a := range t.Attr {
					n.attrs[a.Name.Local] = a.Value
				}
			}
			if len(stack) == 0 {
				if root != nil {
					return nil, fmt.Errorf("invalid XML: multiple root elements")
				}
				root = n
			} else {
				parent := stack[len(stack)-1]
				parent.children = append(parent.children, n)
			}
			stack = append(stack, n)

		case xml.EndElement:
			if len(stack) == 0 {
				return nil, fmt.Errorf("invalid XML: unbalanced end element %s", t.Name.Local)
			}
			top := stack[len(stack)-1]
			top.text = strings.TrimSpace(top.text)
			stack = stack[:len(stack)-1]

		case xml.CharData:
			if len(stack) > 0 {
				stack[len(stack)-1].text += string(t)
			}
		}
	}

	if root == nil {
		return nil, fmt.Errorf("invalid XML: no root element")
	}
	return &XMLDoc{root: root}, nil
}

// Lookup implements Doc.
func (d *XMLDoc) Lookup(path string) Value {
	segments, attr, descend := splitPath(path)

	var out Value
	if len(segments) == 0 {
		// Attribute of the scope element itself, e.g. "@pIndex".
		if attr != "" {
			if v, ok := d.root.attrs[attr]; ok {
				out = append(out, v)
			}
		}
		return out
	}

	for _, n := range d.match(segments, descend) {
		if attr != "" {
			if v, ok := n.attrs[attr]; ok {
				out = append(out, v)
			}
		} else {
			out = append(out, n.text)
		}
	}
	return out
}

// Subtrees implements Doc.
func (d *XMLDoc) Subtrees(path string) []Doc {
	segments, attr, descend := splitPath(path)
	if attr != "" || len(segments) == 0 {
		return nil
	}

	nodes := d.match(segments, descend)
	out := make([]Doc, len(nodes))
	for i, n := range nodes {
		out[i] = &XMLDoc{root: n}
	}
	return out
}

// splitPath normalizes a lookup path into element segments, an optional
// trailing attribute name, and whether the first segment searches
// descendants at any depth.
func splitPath(path string) (segments []string, attr string, descend bool) {
	p := strings.TrimPrefix(path, ".")
	if strings.HasPrefix(p, "//") {
		descend = true
		p = p[2:]
	} else {
		p = strings.TrimPrefix(p, "/")
	}

	for _, seg := range strings.Split(p, "/") {
		if seg == "" {
			continue
		}
		if strings.HasPrefix(seg, "@") {
			attr = seg[1:]
			continue
		}
		segments = append(segments, seg)
	}
	return segments, attr, descend
}

func (d *XMLDoc) match(segments []string, descend bool) []*node {
	current := []*node{d.root}

	for i, seg := range segments {
		var next []*node
		for _, n := range current {
			if i == 0 && descend {
				collectDescendants(n, seg, &next)
				continue
			}
			for _, c := range n.children {
				if c.name == seg {
					next = append(next, c)
				}
			}
		}
		current = next
	}
	return current
}

func collectDescendants(n *node, name string, out *[]*node) {
	for _, c := range n.children {
		if c.name == name {
			*out = append(*out, c)
		}
		collectDescendants(c, name, out)
	}
}
