package scene

// Node is one element of the overlay tree: tag, identity, classes, text and
// style custom properties. Nodes belonging to one sequence family are only
// mutated by that family's run, so Node itself carries no locking.
type Node struct {
	Tag     string
	ID      string
	Classes []string
	Text    string
	Attrs   map[string]string
	Style   map[string]string

	parent   *Node
	children []*Node
}

// El creates a new node with the given tag.
func El(tag string) *Node {
	return &Node{Tag: tag}
}

// WithID sets the node id.
func (n *Node) WithID(id string) *Node {
	n.ID = id
	return n
}

// Class appends one or more classes.
func (n *Node) Class(classes ...string) *Node {
	n.Classes = append(n.Classes, classes...)
	return n
}

// RemoveClass drops a class if present.
func (n *Node) RemoveClass(class string) *Node {
	out := n.Classes[:0]
	for _, c := range n.Classes {
		if c != class {
			out = append(out, c)
		}
	}
	n.Classes = out
	return n
}

// HasClass reports whether the node carries the class.
func (n *Node) HasClass(class string) bool {
	for _, c := range n.Classes {
		if c == class {
			return true
		}
	}
	return false
}

// SetText sets the node's text content. Text is data, never parsed.
func (n *Node) SetText(text string) *Node {
	n.Text = text
	return n
}

// SetAttr sets an attribute.
func (n *Node) SetAttr(key, value string) *Node {
	if n.Attrs == nil {
		n.Attrs = make(map[string]string)
	}
	n.Attrs[key] = value
	return n
}

// SetStyle sets a style property (including CSS custom properties).
func (n *Node) SetStyle(key, value string) *Node {
	if n.Style == nil {
		n.Style = make(map[string]string)
	}
	n.Style[key] = value
	return n
}

// Append attaches children to the node, detaching them from any prior parent.
func (n *Node) Append(children ...*Node) *Node {
	for _, c := range children {
		if c == nil {
			continue
		}
		c.Detach()
		c.parent = n
		n.children = append(n.children, c)
	}
	return n
}

// Detach removes the node from its parent, if any.
func (n *Node) Detach() {
	p := n.parent
	if p == nil {
		return
	}
	for i, c := range p.children {
		if c == n {
			p.children = append(p.children[:i], p.children[i+1:]...)
			break
		}
	}
	n.parent = nil
}

// RemoveChildren detaches all children.
func (n *Node) RemoveChildren() {
	for _, c := range n.children {
		c.parent = nil
	}
	n.children = nil
}

// Children returns a copy of the child list.
func (n *Node) Children() []*Node {
	out := make([]*Node, len(n.children))
	copy(out, n.children)
	return out
}

// Parent returns the node's parent, or nil for a root.
func (n *Node) Parent() *Node {
	return n.parent
}

// Find returns the first node in the subtree (including n) matching pred,
// depth first.
func (n *Node) Find(pred func(*Node) bool) *Node {
	if pred(n) {
		return n
	}
	for _, c := range n.children {
		if found := c.Find(pred); found != nil {
			return found
		}
	}
	return nil
}

// FindByClass returns the first node in the subtree carrying the class.
func (n *Node) FindByClass(class string) *Node {
	return n.Find(func(m *Node) bool { return m.HasClass(class) })
}

// FindByID returns the first node in the subtree with the given id.
func (n *Node) FindByID(id string) *Node {
	return n.Find(func(m *Node) bool { return m.ID == id })
}

// Walk visits every node in the subtree, depth first.
func (n *Node) Walk(visit func(*Node)) {
	visit(n)
	for _, c := range n.children {
		c.Walk(visit)
	}
}
