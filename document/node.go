package document

// Op enumerates the document-mutation operations from spec §6.
type Op int

const (
	OpUnknown Op = iota
	OpAppend
	OpPrepend
	OpInsertBefore
	OpInsertAfter
	OpDisplace
	OpUpdate
	OpErase
	OpClear
)

func (o Op) String() string {
	switch o {
	case OpAppend:
		return "append"
	case OpPrepend:
		return "prepend"
	case OpInsertBefore:
		return "insertBefore"
	case OpInsertAfter:
		return "insertAfter"
	case OpDisplace:
		return "displace"
	case OpUpdate:
		return "update"
	case OpErase:
		return "erase"
	case OpClear:
		return "clear"
	default:
		return "unknown"
	}
}

type attr struct {
	name  string
	value string
}

// Node is the single concrete node representation for every NodeKind. Only
// the fields relevant to its kind are populated; e.g. Text/Data/CDATA
// nodes ignore attrs and children.
type Node struct {
	id   uint64
	doc  *Document
	kind NodeKind
	tag  string // element tag name, empty for non-element kinds
	ns   string // namespace, element-only

	text string // Text/CDATA content
	data any    // Data node payload (XGML), a *variant.Value in practice

	attrs       []attr
	children    []*Node
	parent      *Node
	selfClosing bool

	// UserData is an opaque slot owned by the document's consumer (the
	// interpreter/renderer-client correlate VDOM frames and renderer
	// handles through it); the document model never inspects it.
	UserData any
}

// ID returns the node's document-local identity (not the "id" attribute).
func (n *Node) ID() uint64 { return n.id }

func (n *Node) Kind() NodeKind { return n.kind }
func (n *Node) TagName() string { return n.tag }
func (n *Node) Namespace() string { return n.ns }
func (n *Node) Text() string { return n.text }
func (n *Node) Data() any { return n.data }
func (n *Node) Parent() *Node { return n.parent }
func (n *Node) Document() *Document { return n.doc }
func (n *Node) SelfClosing() bool { return n.selfClosing }

// Children returns the node's direct children in document order,
// interleaving element/text/data/comment kinds exactly as inserted (spec
// §3.2: "an element's children are partitioned by kind with interleaving
// preserved").
func (n *Node) Children() []*Node { return n.children }

// ChildrenCount reports (elements, texts, others) counts, matching the
// spec §8 round-trip property `children_count(e) == (0,0,0)` after clear.
func (n *Node) ChildrenCount() (elements, texts, others int) {
	for _, c := range n.children {
		switch c.kind {
		case NodeElement:
			elements++
		case NodeText, NodeData, NodeCDATA:
			texts++
		default:
			others++
		}
	}
	return
}

// Descendants returns every descendant node in document (pre-)order.
func (n *Node) Descendants() []*Node {
	var out []*Node
	var walk func(*Node)
	walk = func(cur *Node) {
		for _, c := range cur.children {
			out = append(out, c)
			walk(c)
		}
	}
	walk(n)
	return out
}

// Siblings returns the node's siblings (excluding itself) in document
// order.
func (n *Node) Siblings() []*Node {
	if n.parent == nil {
		return nil
	}
	var out []*Node
	for _, c := range n.parent.children {
		if c != n {
			out = append(out, c)
		}
	}
	return out
}

// Attr returns the named attribute's value, or "" if absent.
func (n *Node) Attr(name string) string {
	for _, a := range n.attrs {
		if a.name == name {
			return a.value
		}
	}
	return ""
}

// HasAttr reports whether name is present (distinguishing "" from absent).
func (n *Node) HasAttr(name string) bool {
	for _, a := range n.attrs {
		if a.name == name {
			return true
		}
	}
	return false
}

// AttrNames returns attribute names in declaration order.
func (n *Node) AttrNames() []string {
	names := make([]string, len(n.attrs))
	for i, a := range n.attrs {
		names[i] = a.name
	}
	return names
}

// setAttr mutates the attribute list and keeps the document's id/class
// index current; callers go through Document.SetAttribute.
func (n *Node) setAttr(name, value string) {
	if n.doc != nil {
		n.doc.indexRemove(n)
	}
	for i, a := range n.attrs {
		if a.name == name {
			n.attrs[i].value = value
			if n.doc != nil {
				n.doc.indexAdd(n)
			}
			return
		}
	}
	n.attrs = append(n.attrs, attr{name: name, value: value})
	if n.doc != nil {
		n.doc.indexAdd(n)
	}
}

func (n *Node) eraseAttr(name string) bool {
	for i, a := range n.attrs {
		if a.name == name {
			if n.doc != nil {
				n.doc.indexRemove(n)
			}
			n.attrs = append(n.attrs[:i], n.attrs[i+1:]...)
			if n.doc != nil {
				n.doc.indexAdd(n)
			}
			return true
		}
	}
	return false
}

func (n *Node) clearAttrs() {
	if n.doc != nil {
		n.doc.indexRemove(n)
	}
	n.attrs = nil
}

func (n *Node) detach() {
	if n.parent == nil {
		return
	}
	siblings := n.parent.children
	for i, c := range siblings {
		if c == n {
			n.parent.children = append(siblings[:i], siblings[i+1:]...)
			break
		}
	}
	n.parent = nil
}

func (n *Node) insertChildAt(index int, child *Node) {
	child.detach()
	child.parent = n
	if index < 0 || index >= len(n.children) {
		n.children = append(n.children, child)
	} else {
		n.children = append(n.children, nil)
		copy(n.children[index+1:], n.children[index:])
		n.children[index] = child
	}
	if n.doc != nil && child.kind == NodeElement {
		n.doc.indexAdd(child)
	}
}

func (n *Node) indexOfChild(child *Node) int {
	for i, c := range n.children {
		if c == child {
			return i
		}
	}
	return -1
}
