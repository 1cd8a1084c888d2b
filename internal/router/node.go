package router

// Node is one element of a page's view tree, the host-side stand-in
// for a rendered DOM element. Pages build trees of them; the window
// layer turns the mounted tree into actual UI.
type Node struct {
	Kind     string
	Text     string
	Attrs    map[string]string
	Children []*Node
}

// El creates an element node with the given children.
func El(kind string, children ...*Node) *Node {
	return &Node{Kind: kind, Children: children}
}

// Text creates a text node.
func Text(s string) *Node {
	return &Node{Kind: "text", Text: s}
}

// Set stores an attribute and returns the node for chaining during
// tree construction.
func (n *Node) Set(key, value string) *Node {
	if n.Attrs == nil {
		n.Attrs = make(map[string]string)
	}
	n.Attrs[key] = value
	return n
}

// Attr returns an attribute value, or "" when unset.
func (n *Node) Attr(key string) string {
	return n.Attrs[key]
}

// Find returns the first node of the given kind in depth-first order,
// including the receiver, or nil.
func (n *Node) Find(kind string) *Node {
	if n == nil {
		return nil
	}
	if n.Kind == kind {
		return n
	}
	for _, child := range n.Children {
		if found := child.Find(kind); found != nil {
			return found
		}
	}
	return nil
}

// Container is the mount point a router renders pages into. At most
// one tree is mounted at a time.
type Container struct {
	root *Node
}

// NewContainer creates an empty mount point.
func NewContainer() *Container {
	return &Container{}
}

// Mount replaces the container's content with the given tree.
func (c *Container) Mount(n *Node) {
	c.root = n
}

// Clear removes the mounted tree.
func (c *Container) Clear() {
	c.root = nil
}

// Root returns the currently mounted tree, or nil.
func (c *Container) Root() *Node {
	return c.root
}
