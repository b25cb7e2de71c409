package render

import (
	"context"
	"sync"

	"github.com/purc-run/hvml/document"
	"github.com/purc-run/hvml/herr"
)

// MoveBuffer is an in-process Transport that mirrors requests directly
// onto a *document.Document instead of crossing any wire — the transport
// a CLI harness or test uses when there is no out-of-process renderer,
// analogous to PurC's "move buffer" renderer that shares memory with the
// interpreter instead of serializing.
type MoveBuffer struct {
	mu  sync.Mutex
	doc *document.Document
}

// NewMoveBuffer creates a move-buffer transport backed by doc.
func NewMoveBuffer(doc *document.Document) *MoveBuffer {
	return &MoveBuffer{doc: doc}
}

func (m *MoveBuffer) Send(ctx context.Context, req *Request) (*Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch req.Operation {
	case OpStartSession, OpEndSession, OpCreateWorkspace, OpCreatePlainWindow, OpCreateWidget:
		return &Response{RetCode: 0, ResultValue: 1}, nil

	case OpLoad, OpWriteBegin, OpWriteMore, OpWriteEnd:
		return &Response{RetCode: 0}, nil

	case OpAppend, OpPrepend, OpInsertBefore, OpInsertAfter, OpDisplace:
		target, err := m.resolve(req)
		if err != nil {
			return nil, err
		}
		docOp := documentOpFor(req.Operation)
		if req.DataType == DataVoid || req.Data == nil {
			return &Response{RetCode: 0}, nil
		}
		if _, err := m.doc.NewContent(target, docOp, dataMarkup(req)); err != nil {
			return nil, err
		}
		return &Response{RetCode: 0}, nil

	case OpUpdate:
		target, err := m.resolve(req)
		if err != nil {
			return nil, err
		}
		if req.Property == "textContent" {
			target.UpdateText(dataMarkup(req))
			return &Response{RetCode: 0}, nil
		}
		if _, err := m.doc.OperateElement(target, document.OpUpdate, "", false); err != nil {
			return nil, err
		}
		return &Response{RetCode: 0}, nil

	case OpErase:
		target, err := m.resolve(req)
		if err != nil {
			return nil, err
		}
		target.Erase()
		return &Response{RetCode: 0}, nil

	case OpClear:
		target, err := m.resolve(req)
		if err != nil {
			return nil, err
		}
		target.Clear()
		return &Response{RetCode: 0}, nil

	default:
		return &Response{RetCode: 0}, nil
	}
}

func documentOpFor(op Operation) document.Op {
	switch op {
	case OpAppend:
		return document.OpAppend
	case OpPrepend:
		return document.OpPrepend
	case OpInsertBefore:
		return document.OpInsertBefore
	case OpInsertAfter:
		return document.OpInsertAfter
	case OpDisplace:
		return document.OpDisplace
	default:
		return document.OpUnknown
	}
}

func dataMarkup(req *Request) string {
	if req.Data == nil {
		return ""
	}
	return req.Data.Str()
}

func (m *MoveBuffer) resolve(req *Request) (*document.Node, error) {
	switch req.ElementType {
	case ElementID:
		n := m.doc.GetElementByID(req.Element)
		if n == nil {
			return nil, herr.New(herr.KindNotExists, "no element with id "+req.Element)
		}
		return n, nil
	case ElementHandle:
		return nil, herr.New(herr.KindNotImplemented, "handle-addressed moveBuffer resolution requires the interpreter's handle table")
	default:
		return m.doc.RootElement(), nil
	}
}

func (m *MoveBuffer) Close() error { return nil }
