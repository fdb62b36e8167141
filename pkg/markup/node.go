package markup

import "fmt"

// Kind is the node type discriminator.
type Kind uint8

const (
	KindElement  Kind = iota // <div>, <button>, etc.
	KindText                 // Plain text node
	KindFragment             // Grouping without wrapper
	KindRaw                  // Raw HTML (not escaped)
)

// String returns the string representation of the Kind.
func (k Kind) String() string {
	switch k {
	case KindElement:
		return "Element"
	case KindText:
		return "Text"
	case KindFragment:
		return "Fragment"
	case KindRaw:
		return "Raw"
	default:
		return "Unknown"
	}
}

// Node is one node of a markup tree.
type Node struct {
	Kind     Kind
	Tag      string  // Element tag name (e.g. "div")
	Props    Props   // Attribute values
	Children []*Node // Child nodes
	Text     string  // For KindText and KindRaw
}

// Props holds element attributes.
type Props map[string]any

// Component produces a markup tree from page props.
type Component func(props map[string]any) *Node

// El creates an element node.
func El(tag string, props Props, children ...*Node) *Node {
	return &Node{Kind: KindElement, Tag: tag, Props: props, Children: children}
}

// Text creates an escaped text node.
func Text(text string) *Node {
	return &Node{Kind: KindText, Text: text}
}

// Textf creates an escaped text node from a format string.
func Textf(format string, args ...any) *Node {
	return &Node{Kind: KindText, Text: fmt.Sprintf(format, args...)}
}

// Raw creates a node whose text is emitted verbatim, without escaping.
// The caller vouches for the content.
func Raw(html string) *Node {
	return &Node{Kind: KindRaw, Text: html}
}

// Fragment groups children without a wrapper element.
func Fragment(children ...*Node) *Node {
	return &Node{Kind: KindFragment, Children: children}
}
