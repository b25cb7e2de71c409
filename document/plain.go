package document

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// plain styles give the terminal target document a little visual structure
// without a real layout engine: headings bold, emphasis italic, the rest
// plain — the idiomatic "foil"-equivalent rendering this package owns
// (the real foil terminal renderer is an external collaborator per spec
// §1; this is the plain *document kind*'s own text serialization).
var (
	plainHeading = lipgloss.NewStyle().Bold(true)
	plainEmph    = lipgloss.NewStyle().Italic(true)
)

func init() {
	register(KindPlain, &ops{
		newElement: func(d *Document, target *Node, op Op, tag string, selfClose bool) (*Node, error) {
			n := d.newNode(NodeElement, tag)
			n.selfClosing = selfClose
			if op == OpUpdate {
				target.Clear()
				target.tag = tag
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
		newContent: func(d *Document, target *Node, op Op, markup string) ([]*Node, error) {
			n := d.newNode(NodeText, "")
			n.text = markup
			if op == OpUpdate {
				target.Clear()
				op = OpAppend
			}
			if err := genericLink(target, op, n); err != nil {
				return nil, err
			}
			return []*Node{n}, nil
		},
		serializeNode: serializePlain,
	})
}

func serializePlain(d *Document, n *Node, opt SerializeOptions, w *serializeWriter) {
	switch n.kind {
	case NodeText, NodeCDATA:
		if opt.has(OptSkipWSNodes) && isWhitespaceOnly(n.text) {
			return
		}
		w.sb.WriteString(n.text)
		w.sb.WriteByte('\n')
	case NodeElement:
		style := plainStyleFor(n.tag)
		if style == nil {
			for _, c := range n.children {
				serializePlain(d, c, opt, w)
			}
			return
		}
		inner := &serializeWriter{}
		for _, c := range n.children {
			serializePlain(d, c, opt, inner)
		}
		rendered := strings.TrimSuffix(inner.sb.String(), "\n")
		w.sb.WriteString(style.Render(rendered))
		w.sb.WriteByte('\n')
	}
}

func plainStyleFor(tag string) *lipgloss.Style {
	switch strings.ToLower(tag) {
	case "h1", "h2", "h3", "strong", "b":
		return &plainHeading
	case "em", "i":
		return &plainEmph
	default:
		return nil
	}
}
