// Package document implements HVML's polymorphic target document: the
// markup tree a running program mutates and that is mirrored to an
// external renderer.
//
// A single Document type backs every discriminator kind (html, xml, xgml,
// plain, void); behavior that differs per kind (special-element lookup,
// selector-addressed queries, serialization quirks) is dispatched through a
// small ops table, mirroring the ops-struct dispatch in PurC's
// document.c — one concrete tree, several swappable behavior tables,
// rather than five duplicated package hierarchies.
package document

import "github.com/purc-run/hvml/herr"

// Kind is the document discriminator string from spec §6.
type Kind string

const (
	KindVoid  Kind = "void"
	KindPlain Kind = "plain"
	KindHTML  Kind = "html"
	KindXML   Kind = "xml"
	KindXGML  Kind = "xgml"
)

// Namespace constants from spec §6.
const (
	NSHTML  = "html"
	NSMath  = "mathml"
	NSSVG   = "svg"
	NSXGML  = "xgml"
	NSXLink = "xlink"
	NSXML   = "xml"
	NSXMLNS = "xmlns"
)

// NodeKind discriminates a Node's structural role.
type NodeKind int

const (
	NodeElement NodeKind = iota
	NodeText
	NodeData
	NodeCDATA
	NodeOther
	NodeVoid
)

// ops is the per-Kind capability table. A nil method means the capability
// is unsupported for that Kind and callers receive herr.KindNotImplemented
// rather than a nil-pointer panic (design note: "Missing capability yields
// not-implemented rather than a null-function crash").
type ops struct {
	newElement    func(d *Document, parent *Node, op Op, tag string, selfClose bool) (*Node, error)
	newTextNode   func(d *Document, parent *Node, op Op, text string) (*Node, error)
	newDataNode   func(d *Document, parent *Node, op Op, val any) (*Node, error)
	newContent    func(d *Document, parent *Node, op Op, markup string) ([]*Node, error)
	serializeNode func(d *Document, n *Node, opt SerializeOptions, w *serializeWriter)
}

var registry = map[Kind]*ops{}

func register(k Kind, o *ops) { registry[k] = o }

// Document is the concrete polymorphic target document.
type Document struct {
	kind Kind
	ops  *ops

	root *Node
	head *Node
	body *Node

	byID    map[string]*Node
	byClass map[string][]*Node
	byID64  map[uint64]*Node

	nextNodeID uint64
}

// New creates an empty document of the given kind. An unknown kind falls
// back to KindVoid, matching purc_document_retrieve_type's fallback.
func New(kind Kind) *Document {
	o, ok := registry[kind]
	if !ok {
		kind = KindVoid
		o = registry[KindVoid]
	}
	d := &Document{
		kind:    kind,
		ops:     o,
		byID:    make(map[string]*Node),
		byClass: make(map[string][]*Node),
		byID64:  make(map[uint64]*Node),
	}
	d.root = d.newNode(NodeElement, "html")
	d.root.doc = d
	return d
}

func (d *Document) Kind() Kind { return d.kind }

func (d *Document) newNode(nk NodeKind, tag string) *Node {
	d.nextNodeID++
	n := &Node{
		id:   d.nextNodeID,
		doc:  d,
		kind: nk,
		tag:  tag,
	}
	d.byID64[n.id] = n
	return n
}

// NodeByHandle resolves a node by its document-local numeric identity, the
// same id serialized into the `data-hvml-handle` attribute under
// OptWithHVMLHandle.
func (d *Document) NodeByHandle(id uint64) *Node { return d.byID64[id] }

// RootElement returns the document's root element.
func (d *Document) RootElement() *Node { return d.root }

// SpecialElement resolves one of the well-known special elements: "root",
// "head", "body". Unknown names return nil.
func (d *Document) SpecialElement(name string) *Node {
	switch name {
	case "root":
		return d.root
	case "head":
		return d.head
	case "body":
		return d.body
	default:
		return nil
	}
}

// SetSpecialElement binds a node as the head/body special element; used by
// the first append of a <head>/<body> element during materialization.
func (d *Document) SetSpecialElement(name string, n *Node) {
	switch name {
	case "head":
		d.head = n
	case "body":
		d.body = n
	}
}

// GetElementByID returns the element with the given id attribute in O(1),
// maintained incrementally by attribute mutation (spec §3.2: "id and class
// are special attributes queryable in O(1)").
func (d *Document) GetElementByID(id string) *Node {
	return d.byID[id]
}

// GetElementsByClass returns every element carrying className in its class
// attribute, in the order the elements entered the class index (which is
// not necessarily document order).
func (d *Document) GetElementsByClass(className string) []*Node {
	return d.byClass[className]
}

func (d *Document) indexAdd(n *Node) {
	if id := n.Attr("id"); id != "" {
		d.byID[id] = n
	}
	for _, c := range splitClass(n.Attr("class")) {
		d.byClass[c] = append(d.byClass[c], n)
	}
}

func (d *Document) indexRemove(n *Node) {
	if id := n.Attr("id"); id != "" && d.byID[id] == n {
		delete(d.byID, id)
	}
	for _, c := range splitClass(n.Attr("class")) {
		list := d.byClass[c]
		for i, e := range list {
			if e == n {
				d.byClass[c] = append(list[:i], list[i+1:]...)
				break
			}
		}
	}
}

func splitClass(s string) []string {
	var out []string
	start := -1
	for i := 0; i <= len(s); i++ {
		if i < len(s) && s[i] != ' ' {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			out = append(out, s[start:i])
			start = -1
		}
	}
	return out
}

// notImplemented builds a herr.Error for an ops capability missing on the
// document's kind.
func (d *Document) notImplemented(capability string) error {
	return herr.New(herr.KindNotImplemented, string(d.kind)+" document does not implement "+capability)
}
