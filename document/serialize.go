package document

import "strings"

// SerializeOptions is the bit-flag option set from spec §6.
type SerializeOptions uint32

const (
	OptSkipWSNodes SerializeOptions = 1 << iota
	OptSkipComment
	OptRaw
	OptWithoutClosing
	OptTagWithNS
	OptWithoutTextIndent
	OptFullDoctype
	OptWithHVMLHandle
)

func (o SerializeOptions) has(flag SerializeOptions) bool { return o&flag != 0 }

type serializeWriter struct {
	sb    strings.Builder
	depth int
}

func (w *serializeWriter) indent() {
	if w.depth > 0 {
		w.sb.WriteString(strings.Repeat("  ", w.depth))
	}
}

// Serialize renders the document (starting at its root, or at `from` if
// given) to text, deterministic for a given option set (spec §3.2
// invariant).
func (d *Document) Serialize(opt SerializeOptions, from *Node) string {
	if d.ops.serializeNode == nil {
		return ""
	}
	root := from
	if root == nil {
		root = d.root
	}
	w := &serializeWriter{}
	d.ops.serializeNode(d, root, opt, w)
	return w.sb.String()
}

// DefaultTextType names the MIME-ish data-type string a document kind
// serializes as by default, used by the renderer client when choosing the
// `data-type` field of a `load`/`writeBegin` request (spec §6).
func (k Kind) DefaultTextType() string {
	switch k {
	case KindHTML:
		return "html"
	case KindXML:
		return "xml"
	case KindXGML:
		return "xgml"
	case KindPlain:
		return "plain"
	default:
		return "void"
	}
}

// escapeText escapes the three characters &, < and >; used by every
// markup-producing ops table unless OptRaw is set.
func escapeText(s string) string {
	var sb strings.Builder
	for _, r := range s {
		switch r {
		case '&':
			sb.WriteString("&amp;")
		case '<':
			sb.WriteString("&lt;")
		case '>':
			sb.WriteString("&gt;")
		default:
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

func escapeAttr(s string) string {
	var sb strings.Builder
	for _, r := range s {
		switch r {
		case '&':
			sb.WriteString("&amp;")
		case '"':
			sb.WriteString("&quot;")
		case '<':
			sb.WriteString("&lt;")
		default:
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

func isWhitespaceOnly(s string) bool {
	for _, r := range s {
		switch r {
		case ' ', '\t', '\n', '\r':
			continue
		default:
			return false
		}
	}
	return true
}
