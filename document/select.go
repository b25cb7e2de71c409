package document

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/purc-run/hvml/herr"
)

// QuerySelector resolves a CSS selector against the document, returning
// the first matching element. `update at=<selector>` on a document target
// goes through this path for anything beyond a bare `#id`/`.class` (those
// two resolve in O(1) via the maintained index without invoking the
// selector engine at all).
//
// The selector *engine* itself (cascadia, via goquery) is an external
// collaborator per spec §1; this method only wires the document tree to it
// by round-tripping through a handle-tagged serialization so matches can be
// mapped back onto this package's own Node values.
func (d *Document) QuerySelector(selector string) (*Node, error) {
	nodes, err := d.QuerySelectorAll(selector)
	if err != nil {
		return nil, err
	}
	if len(nodes) == 0 {
		return nil, nil
	}
	return nodes[0], nil
}

// QuerySelectorAll resolves every element matching selector, in document
// order.
func (d *Document) QuerySelectorAll(selector string) ([]*Node, error) {
	if fast, ok := fastSelector(d, selector); ok {
		return fast, nil
	}
	text := d.Serialize(OptWithHVMLHandle|OptSkipComment, d.root)
	gq, err := goquery.NewDocumentFromReader(strings.NewReader(text))
	if err != nil {
		return nil, herr.Wrap(herr.KindInvalidValue, "selector parse failed", err)
	}
	var out []*Node
	gq.Find(selector).Each(func(_ int, sel *goquery.Selection) {
		handleStr, ok := sel.Attr("data-hvml-handle")
		if !ok {
			return
		}
		id, err := strconv.ParseUint(handleStr, 10, 64)
		if err != nil {
			return
		}
		if n := d.NodeByHandle(id); n != nil {
			out = append(out, n)
		}
	})
	return out, nil
}

// fastSelector short-circuits the two addressing forms spec §4.6.5 uses in
// its own example (`#x`) and the equally common `.class`, skipping the
// goquery round-trip entirely.
func fastSelector(d *Document, selector string) ([]*Node, bool) {
	selector = strings.TrimSpace(selector)
	if strings.HasPrefix(selector, "#") && !strings.ContainsAny(selector, " .>:[") {
		id := selector[1:]
		if n := d.GetElementByID(id); n != nil {
			return []*Node{n}, true
		}
		return nil, true
	}
	if strings.HasPrefix(selector, ".") && !strings.ContainsAny(selector, " >:[") {
		class := selector[1:]
		return d.GetElementsByClass(class), true
	}
	return nil, false
}

// HandleString renders a node's handle the way the renderer client's
// `element-type: handle` addressing expects it (spec §4.7 worked example
// uses `H(x)` notation; the runtime's actual wire value is the decimal
// handle).
func HandleString(n *Node) string {
	return fmt.Sprintf("%d", n.ID())
}
