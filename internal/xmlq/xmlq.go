// Package xmlq parses XML documents into a small element tree and answers
// descendant-selector queries against it.
//
// The legacy manager writes .NET settings files and FOMOD descriptors in a
// mix of UTF-8 and UTF-16 (with BOM); Parse normalizes both to UTF-8 before
// decoding. Element names match case-sensitively, as in XML; attribute
// values can be matched exactly or under case folding.
package xmlq

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/danieljhkim/modimport/internal/collate"
)

// Node is one XML element.
type Node struct {
	Name     string
	Attrs    map[string]string
	Children []*Node
	Parent   *Node

	text strings.Builder
}

// Step selects elements by name and, optionally, by one attribute.
type Step struct {
	// Name is the element's local name. Empty matches any element.
	Name string

	// Attr, when set, requires the element to carry this attribute.
	Attr string

	// Value is the required attribute value.
	Value string

	// Fold compares Value under case folding.
	Fold bool
}

// El is shorthand for a Step matching only an element name.
func El(name string) Step {
	return Step{Name: name}
}

// Parse decodes data into a synthetic document node whose children are the
// top-level elements.
func Parse(data []byte) (*Node, error) {
	r := transform.NewReader(bytes.NewReader(data), unicode.BOMOverride(unicode.UTF8.NewDecoder()))

	dec := xml.NewDecoder(r)
	dec.CharsetReader = charsetReader

	doc := &Node{Attrs: map[string]string{}}
	cur := doc
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to decode xml: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			n := &Node{Name: t.Name.Local, Attrs: make(map[string]string, len(t.Attr)), Parent: cur}
			for _, a := range t.Attr {
				n.Attrs[a.Name.Local] = a.Value
			}
			cur.Children = append(cur.Children, n)
			cur = n
		case xml.EndElement:
			if cur.Parent != nil {
				cur = cur.Parent
			}
		case xml.CharData:
			cur.text.Write(t)
		}
	}

	if cur != doc {
		return nil, fmt.Errorf("failed to decode xml: unclosed element %q", cur.Name)
	}
	if len(doc.Children) == 0 {
		return nil, fmt.Errorf("failed to decode xml: no root element")
	}
	return doc, nil
}

// charsetReader is consulted for the encoding named in the XML declaration.
// Input has already passed through BOM detection, so UTF-16 documents are
// UTF-8 by the time the declaration is read.
func charsetReader(label string, input io.Reader) (io.Reader, error) {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "utf-8", "utf8", "utf-16", "utf16", "unicode", "us-ascii", "ascii":
		return input, nil
	case "iso-8859-1", "latin1", "latin-1":
		return charmap.ISO8859_1.NewDecoder().Reader(input), nil
	case "windows-1252", "cp1252":
		return charmap.Windows1252.NewDecoder().Reader(input), nil
	}
	return nil, fmt.Errorf("unsupported charset %q", label)
}

// Attr returns the value of the named attribute.
func (n *Node) Attr(name string) (string, bool) {
	v, ok := n.Attrs[name]
	return v, ok
}

// Text returns the character data directly inside n, excluding children.
func (n *Node) Text() string {
	return n.text.String()
}

// InnerText returns all character data inside n and its descendants in
// document order.
func (n *Node) InnerText() string {
	var b strings.Builder
	n.writeText(&b)
	return b.String()
}

func (n *Node) writeText(b *strings.Builder) {
	// Character data interleaved with children is not position-tracked;
	// own text comes first. Settings and FOMOD values are leaf elements.
	b.WriteString(n.text.String())
	for _, c := range n.Children {
		c.writeText(b)
	}
}

func (s Step) matches(n *Node) bool {
	if s.Name != "" && s.Name != n.Name {
		return false
	}
	if s.Attr == "" {
		return true
	}
	v, ok := n.Attrs[s.Attr]
	if !ok {
		return false
	}
	if s.Fold {
		return collate.Equal(v, s.Value)
	}
	return v == s.Value
}

// First returns the first element reached by the descendant chain
// steps[0] steps[1] ... steps[n-1], or nil when nothing matches.
// Candidates for each step are tried in document order.
func (n *Node) First(steps ...Step) *Node {
	if len(steps) == 0 {
		return n
	}
	var found *Node
	n.walk(func(d *Node) bool {
		if !steps[0].matches(d) {
			return true
		}
		if r := d.First(steps[1:]...); r != nil {
			found = r
			return false
		}
		return true
	})
	return found
}

// All returns every element matching step below n, in document order.
func (n *Node) All(step Step) []*Node {
	var out []*Node
	n.walk(func(d *Node) bool {
		if step.matches(d) {
			out = append(out, d)
		}
		return true
	})
	return out
}

// walk visits the descendants of n depth-first in document order until
// visit returns false.
func (n *Node) walk(visit func(*Node) bool) bool {
	for _, c := range n.Children {
		if !visit(c) {
			return false
		}
		if !c.walk(visit) {
			return false
		}
	}
	return true
}
