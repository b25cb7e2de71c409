package document

import "github.com/purc-run/hvml/herr"

// OperateElement creates (or, for Erase/Clear/Displace, resolves against)
// a new element and links it into the tree relative to target per op,
// exactly as spec §4.2 describes. Erase unlinks target and Clear removes
// its children, both returning target; tag is ignored for Erase/Clear.
func (d *Document) OperateElement(target *Node, op Op, tag string, selfClose bool) (*Node, error) {
	if d.ops.newElement == nil {
		return nil, d.notImplemented("operate_element")
	}
	switch op {
	case OpErase:
		target.Erase()
		return target, nil
	case OpClear:
		target.Clear()
		return target, nil
	}
	return d.ops.newElement(d, target, op, tag, selfClose)
}

// NewTextContent creates a text node and links it relative to target per
// op.
func (d *Document) NewTextContent(target *Node, op Op, text string) (*Node, error) {
	if d.ops.newTextNode == nil {
		return nil, d.notImplemented("new_text_content")
	}
	return d.ops.newTextNode(d, target, op, text)
}

// NewDataContent creates a data node (XGML-only capability) carrying an
// opaque payload (a *variant.Value in the interpreter's usage) directly,
// without markup round-tripping.
func (d *Document) NewDataContent(target *Node, op Op, val any) (*Node, error) {
	if d.ops.newDataNode == nil {
		return nil, d.notImplemented("new_data_content")
	}
	return d.ops.newDataNode(d, target, op, val)
}

// NewContent parses a markup string (HTML/XML fragment) and links the
// resulting node(s) relative to target per op.
func (d *Document) NewContent(target *Node, op Op, markup string) ([]*Node, error) {
	if d.ops.newContent == nil {
		return nil, d.notImplemented("new_content")
	}
	return d.ops.newContent(d, target, op, markup)
}

// genericLink performs the structural part of append/prepend/insert-
// before/insert-after/displace common to every node kind, given an already
// constructed (but unlinked) node. Kind-specific ops call this after
// building the node itself.
func genericLink(target *Node, op Op, n *Node) error {
	switch op {
	case OpAppend:
		target.insertChildAt(-1, n)
	case OpPrepend:
		target.insertChildAt(0, n)
	case OpInsertBefore:
		parent := target.parent
		if parent == nil {
			return herr.New(herr.KindInvalidValue, "insertBefore target has no parent")
		}
		idx := parent.indexOfChild(target)
		parent.insertChildAt(idx, n)
	case OpInsertAfter:
		parent := target.parent
		if parent == nil {
			return herr.New(herr.KindInvalidValue, "insertAfter target has no parent")
		}
		idx := parent.indexOfChild(target)
		parent.insertChildAt(idx+1, n)
	case OpDisplace:
		parent := target.parent
		if parent == nil {
			// displacing the document root: wholesale replace children
			target.children = nil
			target.insertChildAt(-1, n)
			return nil
		}
		idx := parent.indexOfChild(target)
		target.Erase()
		parent.insertChildAt(idx, n)
	default:
		return herr.New(herr.KindNotSupported, "unsupported link op: "+op.String())
	}
	return nil
}

// SetAttribute mutates an attribute per op (update/erase/clear), per spec
// §4.2.
func (d *Document) SetAttribute(target *Node, op Op, name, value string) error {
	switch op {
	case OpUpdate:
		if name == "" {
			return herr.New(herr.KindInvalidValue, "attribute name required")
		}
		target.setAttr(name, value)
		return nil
	case OpErase:
		target.eraseAttr(name)
		return nil
	case OpClear:
		target.clearAttrs()
		return nil
	default:
		return herr.New(herr.KindNotSupported, "unsupported attribute op: "+op.String())
	}
}

// Erase unlinks n from its parent. Actual memory release is deferred to Go's
// GC once no reference (including any open Descendants()/iterator slice)
// remains, matching the spec's "removal unlinks but defers actual free
// until no iterator references remain" at the language level.
func (n *Node) Erase() {
	if n.doc != nil {
		n.doc.indexRemove(n)
		for _, d := range n.Descendants() {
			n.doc.indexRemove(d)
		}
	}
	n.detach()
}

// Clear removes all of n's children, leaving n itself in the tree.
func (n *Node) Clear() {
	for _, c := range append([]*Node(nil), n.children...) {
		c.Erase()
	}
	n.children = nil
}

// UpdateText replaces n's text content (for Text/CDATA nodes) or, for an
// element addressed via `at="textContent"` by the interpreter, replaces
// all of n's children with a single text node carrying text.
func (n *Node) UpdateText(text string) {
	switch n.kind {
	case NodeText, NodeCDATA:
		n.text = text
	case NodeElement:
		n.Clear()
		child := n.doc.newNode(NodeText, "")
		child.text = text
		n.insertChildAt(-1, child)
	}
}
