package document

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// markupOps builds the shared element/text/content/serialize behavior for
// the markup-tree document kinds (html, xml, xgml). The kinds differ only
// in namespace defaulting and a couple of serialization quirks, captured
// by the small flags below — everything else is identical tree plumbing,
// so one ops builder parametrized by kind avoids three near-duplicate
// packages.
func markupOps(kind Kind) *ops {
	return &ops{
		newElement: func(d *Document, target *Node, op Op, tag string, selfClose bool) (*Node, error) {
			n := d.newNode(NodeElement, tag)
			n.selfClosing = selfClose
			if op == OpUpdate {
				target.Clear()
				target.tag = tag
				target.selfClosing = selfClose
				return target, nil
			}
			if err := genericLink(target, op, n); err != nil {
				return nil, err
			}
			return n, nil
		},
		newTextNode: func(d *Document, target *Node, op Op, text string) (*Node, error) {
			if op == OpUpdate {
				target.UpdateText(text)
				return target, nil
			}
			n := d.newNode(NodeText, "")
			n.text = text
			if err := genericLink(target, op, n); err != nil {
				return nil, err
			}
			return n, nil
		},
		newDataNode: func(d *Document, target *Node, op Op, val any) (*Node, error) {
			if kind != KindXGML {
				return nil, d.notImplemented("new_data_content (non-XGML)")
			}
			if op == OpUpdate {
				target.data = val
				return target, nil
			}
			n := d.newNode(NodeData, "")
			n.data = val
			if err := genericLink(target, op, n); err != nil {
				return nil, err
			}
			return n, nil
		},
		newContent: func(d *Document, target *Node, op Op, markup string) ([]*Node, error) {
			nodes, err := parseFragment(d, markup)
			if err != nil {
				return nil, err
			}
			if op == OpUpdate {
				target.Clear()
				op = OpAppend
			}
			for _, n := range nodes {
				if err := genericLink(target, op, n); err != nil {
					return nil, err
				}
			}
			return nodes, nil
		},
		serializeNode: serializeMarkup,
	}
}

func init() {
	register(KindHTML, markupOps(KindHTML))
	register(KindXML, markupOps(KindXML))
	register(KindXGML, markupOps(KindXGML))
}

// parseFragment parses an HTML markup fragment into unlinked Nodes using
// golang.org/x/net/html (goquery's underlying parser), which is also the
// parser goquery itself wraps for selector queries.
func parseFragment(d *Document, markup string) ([]*Node, error) {
	frag, err := html.ParseFragment(strings.NewReader(markup), &html.Node{
		Type: html.ElementNode, Data: "body", DataAtom: 0,
	})
	if err != nil {
		return nil, err
	}
	var out []*Node
	for _, hn := range frag {
		out = append(out, fromHTMLNode(d, hn))
	}
	return out, nil
}

func fromHTMLNode(d *Document, hn *html.Node) *Node {
	switch hn.Type {
	case html.TextNode:
		n := d.newNode(NodeText, "")
		n.text = hn.Data
		return n
	case html.CommentNode:
		n := d.newNode(NodeOther, "#comment")
		n.text = hn.Data
		return n
	default:
		n := d.newNode(NodeElement, hn.Data)
		for _, a := range hn.Attr {
			n.setAttr(a.Key, a.Val)
		}
		for c := hn.FirstChild; c != nil; c = c.NextSibling {
			n.insertChildAt(-1, fromHTMLNode(d, c))
		}
		return n
	}
}

func serializeMarkup(d *Document, n *Node, opt SerializeOptions, w *serializeWriter) {
	switch n.kind {
	case NodeText, NodeCDATA:
		if opt.has(OptSkipWSNodes) && isWhitespaceOnly(n.text) {
			return
		}
		if !opt.has(OptWithoutTextIndent) {
			w.indent()
		}
		if opt.has(OptRaw) {
			w.sb.WriteString(n.text)
		} else {
			w.sb.WriteString(escapeText(n.text))
		}
		w.sb.WriteByte('\n')
	case NodeData:
		if !opt.has(OptWithoutTextIndent) {
			w.indent()
		}
		w.sb.WriteString(fmt.Sprintf("%v", n.data))
		w.sb.WriteByte('\n')
	case NodeOther:
		if opt.has(OptSkipComment) {
			return
		}
		w.indent()
		w.sb.WriteString("<!--")
		w.sb.WriteString(n.text)
		w.sb.WriteString("-->\n")
	case NodeElement:
		w.indent()
		w.sb.WriteByte('<')
		w.sb.WriteString(n.tag)
		if opt.has(OptTagWithNS) && n.ns != "" {
			w.sb.WriteString(" xmlns=\"")
			w.sb.WriteString(n.ns)
			w.sb.WriteByte('"')
		}
		for _, name := range n.AttrNames() {
			w.sb.WriteByte(' ')
			w.sb.WriteString(name)
			w.sb.WriteString("=\"")
			w.sb.WriteString(escapeAttr(n.Attr(name)))
			w.sb.WriteByte('"')
		}
		if opt.has(OptWithHVMLHandle) {
			w.sb.WriteString(fmt.Sprintf(" data-hvml-handle=\"%d\"", n.id))
		}
		if n.selfClosing && len(n.children) == 0 {
			if opt.has(OptWithoutClosing) {
				w.sb.WriteString(">\n")
			} else {
				w.sb.WriteString("/>\n")
			}
			return
		}
		w.sb.WriteString(">\n")
		w.depth++
		for _, c := range n.children {
			serializeMarkup(d, c, opt, w)
		}
		w.depth--
		if !opt.has(OptWithoutClosing) {
			w.indent()
			w.sb.WriteString("</")
			w.sb.WriteString(n.tag)
			w.sb.WriteString(">\n")
		}
	}
}
