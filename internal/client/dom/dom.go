// Package dom models the page as an explicit element tree. The tree is
// the client's render target: the reconciler mutates it the way browser
// code would mutate the real DOM, tests assert on it directly, and the
// live view serializes it to HTML. It is always a disposable projection
// of application state and may be rebuilt from state at any time.
package dom

import (
	"html"
	"sort"
	"strings"
)

// Node is a single element.
type Node struct {
	Tag      string
	ID       string
	Classes  []string
	Text     string
	Attrs    map[string]string
	Children []*Node
}

// El creates an element with optional classes.
func El(tag, id string, classes ...string) *Node {
	return &Node{Tag: tag, ID: id, Classes: classes}
}

// SetText sets the node's text content and returns the node.
func (n *Node) SetText(text string) *Node {
	n.Text = text
	return n
}

// SetAttr sets an attribute and returns the node.
func (n *Node) SetAttr(key, value string) *Node {
	if n.Attrs == nil {
		n.Attrs = map[string]string{}
	}
	n.Attrs[key] = value
	return n
}

// Attr returns an attribute value, or "" when unset.
func (n *Node) Attr(key string) string {
	return n.Attrs[key]
}

// Append adds child nodes and returns the node.
func (n *Node) Append(children ...*Node) *Node {
	n.Children = append(n.Children, children...)
	return n
}

// RemoveChildren drops all child nodes.
func (n *Node) RemoveChildren() {
	n.Children = nil
}

// HasClass reports whether the node carries the class.
func (n *Node) HasClass(name string) bool {
	for _, c := range n.Classes {
		if c == name {
			return true
		}
	}
	return false
}

// AddClass adds a class if absent.
func (n *Node) AddClass(name string) {
	if !n.HasClass(name) {
		n.Classes = append(n.Classes, name)
	}
}

// RemoveClass removes a class if present.
func (n *Node) RemoveClass(name string) {
	for i, c := range n.Classes {
		if c == name {
			n.Classes = append(n.Classes[:i], n.Classes[i+1:]...)
			return
		}
	}
}

// ToggleClass adds or removes a class to match on.
func (n *Node) ToggleClass(name string, on bool) {
	if on {
		n.AddClass(name)
	} else {
		n.RemoveClass(name)
	}
}

// Find returns the first node in the subtree with the given id,
// or nil when absent.
func (n *Node) Find(id string) *Node {
	if n == nil {
		return nil
	}
	if n.ID == id {
		return n
	}
	for _, c := range n.Children {
		if found := c.Find(id); found != nil {
			return found
		}
	}
	return nil
}

// FindByAttr returns the first node in the subtree whose attribute key
// equals value, or nil when absent.
func (n *Node) FindByAttr(key, value string) *Node {
	if n == nil {
		return nil
	}
	if n.Attrs[key] == value {
		return n
	}
	for _, c := range n.Children {
		if found := c.FindByAttr(key, value); found != nil {
			return found
		}
	}
	return nil
}

// voidTags renders without a closing tag.
var voidTags = map[string]bool{
	"img": true, "input": true, "br": true, "hr": true, "meta": true, "link": true,
}

// HTML serializes the subtree. Text and attribute values are escaped.
func (n *Node) HTML() string {
	var b strings.Builder
	n.writeHTML(&b)
	return b.String()
}

func (n *Node) writeHTML(b *strings.Builder) {
	b.WriteByte('<')
	b.WriteString(n.Tag)
	if n.ID != "" {
		b.WriteString(` id="` + html.EscapeString(n.ID) + `"`)
	}
	if len(n.Classes) > 0 {
		b.WriteString(` class="` + html.EscapeString(strings.Join(n.Classes, " ")) + `"`)
	}
	// Deterministic attribute order keeps output diffable.
	keys := make([]string, 0, len(n.Attrs))
	for k := range n.Attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		b.WriteString(" " + k + `="` + html.EscapeString(n.Attrs[k]) + `"`)
	}
	b.WriteByte('>')
	if voidTags[n.Tag] {
		return
	}
	if n.Text != "" {
		b.WriteString(html.EscapeString(n.Text))
	}
	for _, c := range n.Children {
		c.writeHTML(b)
	}
	b.WriteString("</" + n.Tag + ">")
}

// Document owns the mounted tree plus the focused-element bookkeeping
// that makes "content patches must not steal focus" observable.
type Document struct {
	Root    *Node
	focusID string
}

// NewDocument returns an empty document.
func NewDocument() *Document {
	return &Document{}
}

// Mount replaces the whole tree. Mounting destroys focus, exactly like
// replacing the page scaffold would.
func (d *Document) Mount(root *Node) {
	d.Root = root
	d.focusID = ""
}

// Find locates a node by id in the mounted tree.
func (d *Document) Find(id string) *Node {
	if d.Root == nil {
		return nil
	}
	return d.Root.Find(id)
}

// SetFocus records the focused element id.
func (d *Document) SetFocus(id string) {
	d.focusID = id
}

// FocusedID returns the focused element id, or "" when nothing holds focus.
func (d *Document) FocusedID() string {
	return d.focusID
}

// HTML serializes the mounted tree, or "" for an empty document.
func (d *Document) HTML() string {
	if d.Root == nil {
		return ""
	}
	return d.Root.HTML()
}
