package ecp

import (
	"encoding/xml"
	"fmt"
	"strings"
)

// xmlNode is a generic element: name, attributes, text and child elements
type xmlNode struct {
	XMLName  xml.Name
	Attrs    []xml.Attr `xml:",any,attr"`
	Text     string     `xml:",chardata"`
	Children []xmlNode  `xml:",any"`
}

// parseDocument decodes data and checks the root element name
func parseDocument(data []byte, root string) (*xmlNode, error) {
	var node xmlNode
	if err := xml.Unmarshal(data, &node); err != nil {
		return nil, fmt.Errorf("%w: failed to parse %s: %v", ErrMalformedResponse, root, err)
	}
	if node.XMLName.Local != root {
		return nil, fmt.Errorf("%w: expected <%s>, got <%s>", ErrMalformedResponse, root, node.XMLName.Local)
	}
	return &node, nil
}

func (n *xmlNode) name() string {
	return n.XMLName.Local
}

// text returns the element's own character data, trimmed
func (n *xmlNode) text() string {
	return strings.TrimSpace(n.Text)
}

func (n *xmlNode) attr(name string) (string, bool) {
	for _, a := range n.Attrs {
		if a.Name.Local == name {
			return a.Value, true
		}
	}
	return "", false
}

func (n *xmlNode) attrOrEmpty(name string) string {
	value, _ := n.attr(name)
	return value
}

// child returns the first child element with the given name
func (n *xmlNode) child(name string) (*xmlNode, bool) {
	for i := range n.Children {
		if n.Children[i].name() == name {
			return &n.Children[i], true
		}
	}
	return nil, false
}

func (n *xmlNode) childText(name string) (string, bool) {
	child, ok := n.child(name)
	if !ok {
		return "", false
	}
	return child.text(), true
}

// children returns every child element with the given name, in document order
func (n *xmlNode) children(name string) []*xmlNode {
	var matches []*xmlNode
	for i := range n.Children {
		if n.Children[i].name() == name {
			matches = append(matches, &n.Children[i])
		}
	}
	return matches
}
