// Package render implements the renderer protocol client of spec §4.7/§6:
// a request/response envelope sent over a pluggable Transport, session and
// page lifecycle, DOM-mutation mirroring, and chunked streaming for large
// documents.
package render

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/purc-run/hvml/herr"
	"github.com/purc-run/hvml/variant"
)

// Target is the envelope's addressing discriminator.
type Target string

const (
	TargetSession     Target = "session"
	TargetWorkspace   Target = "workspace"
	TargetPlainWindow Target = "plain-window"
	TargetWidget      Target = "widget"
	TargetDOM         Target = "dom"
)

// Operation is the closed, stably-ordered set of renderer operations spec
// §6 names.
type Operation string

const (
	OpStartSession       Operation = "startSession"
	OpEndSession         Operation = "endSession"
	OpCreateWorkspace    Operation = "createWorkspace"
	OpUpdateWorkspace    Operation = "updateWorkspace"
	OpDestroyWorkspace   Operation = "destroyWorkspace"
	OpCreatePlainWindow  Operation = "createPlainWindow"
	OpUpdatePlainWindow  Operation = "updatePlainWindow"
	OpDestroyPlainWindow Operation = "destroyPlainWindow"
	OpSetPageGroups      Operation = "setPageGroups"
	OpAddPageGroups      Operation = "addPageGroups"
	OpRemovePageGroup    Operation = "removePageGroup"
	OpCreateWidget       Operation = "createWidget"
	OpUpdateWidget       Operation = "updateWidget"
	OpDestroyWidget      Operation = "destroyWidget"
	OpLoad               Operation = "load"
	OpWriteBegin         Operation = "writeBegin"
	OpWriteMore          Operation = "writeMore"
	OpWriteEnd           Operation = "writeEnd"
	OpRegister           Operation = "register"
	OpRevoke             Operation = "revoke"
	OpAppend             Operation = "append"
	OpPrepend            Operation = "prepend"
	OpInsertBefore       Operation = "insertBefore"
	OpInsertAfter        Operation = "insertAfter"
	OpDisplace           Operation = "displace"
	OpUpdate             Operation = "update"
	OpErase              Operation = "erase"
	OpClear              Operation = "clear"
	OpCallMethod         Operation = "callMethod"
	OpGetProperty        Operation = "getProperty"
	OpSetProperty        Operation = "setProperty"
)

// ElementType discriminates how Request.Element addresses its target.
type ElementType string

const (
	ElementVoid   ElementType = "void"
	ElementID     ElementType = "id"
	ElementHandle ElementType = "handle"
)

// DataType is the wire content-type of a request/response's Data.
type DataType string

const (
	DataVoid  DataType = "void"
	DataJSON  DataType = "json"
	DataPlain DataType = "plain"
	DataHTML  DataType = "html"
	DataSVG   DataType = "svg"
	DataMathML DataType = "mathml"
	DataXGML  DataType = "xgml"
	DataXML   DataType = "xml"
)

// StreamChunkSize is the fixed chunk size spec §6 fixes for
// writeBegin/More/End, always truncated at a valid UTF-8 boundary.
const StreamChunkSize = 10240

// DefaultTimeout is the default expected response time (spec §6).
const DefaultTimeout = 5 * time.Second

// Request is the renderer message envelope (spec §6).
type Request struct {
	Target      Target
	TargetValue uint64
	Operation   Operation
	RequestID   string // "—" for fire-and-forget
	SourceURI   string
	ElementType ElementType
	Element     string
	Property    string
	DataType    DataType
	Data        *variant.Value
	TextLen     uint64
}

// Response carries a request's result.
type Response struct {
	RetCode     int
	ResultValue uint64
	DataType    DataType
	Data        *variant.Value
}

// Transport delivers a Request and waits for its Response. Send returns
// synchronously for every request, fire-and-forget (RequestID "—") ones
// included; there is no separate response channel.
type Transport interface {
	Send(ctx context.Context, req *Request) (*Response, error)
	Close() error
}

// Client is the renderer protocol client a coroutine's target triple
// (page-type, workspace-handle, page-handle) addresses requests through.
// The connection is shared across coroutines within an instance; requests
// serialize at the transport, matched by request-id (spec §5 "Shared-
// resource policy").
type Client struct {
	transport Transport
	minVer    string

	mu       sync.Mutex
	pending  map[string]chan *Response
	reqCount int64
}

// NewClient wraps transport. minVersion is stored on the client but never
// checked: neither the client nor the transports in this package negotiate
// protocol name or version.
func NewClient(transport Transport, minVersion string) *Client {
	return &Client{transport: transport, minVer: minVersion, pending: make(map[string]chan *Response)}
}

// nextRequestID generates a fresh correlation id, grounded on the request-
// id/continuation correlation HBDBus demonstrates (spec §9 open question,
// resolved here by always assigning one rather than allowing "—" except
// for genuinely fire-and-forget operations).
func (c *Client) nextRequestID() string {
	atomic.AddInt64(&c.reqCount, 1)
	return uuid.NewString()
}

// Do sends req, assigning a request-id if it doesn't carry one, and waits
// for the matching response or ctx cancellation.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	if req.RequestID == "" {
		req.RequestID = c.nextRequestID()
	}
	resp, err := c.transport.Send(ctx, req)
	if err != nil {
		return nil, herr.Wrap(herr.KindConnectionAborted, "renderer request failed", err)
	}
	return resp, nil
}

// Close tears down the underlying transport.
func (c *Client) Close() error { return c.transport.Close() }

// Chunk splits markup into StreamChunkSize pieces, always cutting at a
// valid UTF-8 rune boundary, for writeBegin/More/End framing.
func Chunk(markup string) []string {
	var chunks []string
	b := []byte(markup)
	for len(b) > 0 {
		n := StreamChunkSize
		if n > len(b) {
			n = len(b)
		} else {
			for n > 0 && isUTF8Continuation(b[n]) {
				n--
			}
		}
		chunks = append(chunks, string(b[:n]))
		b = b[n:]
	}
	return chunks
}

func isUTF8Continuation(b byte) bool { return b&0xC0 == 0x80 }

// WriteDocument streams markup to target via writeBegin/writeMore*/writeEnd
// when it exceeds one chunk, or a single load otherwise (spec §4.6.3,
// §4.7).
func (c *Client) WriteDocument(ctx context.Context, target Target, targetValue uint64, dataType DataType, markup string) error {
	chunks := Chunk(markup)
	if len(chunks) <= 1 {
		_, err := c.Do(ctx, &Request{
			Target: target, TargetValue: targetValue, Operation: OpLoad,
			ElementType: ElementVoid, DataType: dataType, Data: variant.MustString(markup),
		})
		return err
	}

	if _, err := c.Do(ctx, &Request{
		Target: target, TargetValue: targetValue, Operation: OpWriteBegin,
		DataType: dataType, Data: variant.MustString(chunks[0]), TextLen: uint64(len(chunks[0])),
	}); err != nil {
		return err
	}
	for _, mid := range chunks[1 : len(chunks)-1] {
		if _, err := c.Do(ctx, &Request{
			Target: target, TargetValue: targetValue, Operation: OpWriteMore,
			DataType: dataType, Data: variant.MustString(mid), TextLen: uint64(len(mid)),
		}); err != nil {
			return err
		}
	}
	last := chunks[len(chunks)-1]
	_, err := c.Do(ctx, &Request{
		Target: target, TargetValue: targetValue, Operation: OpWriteEnd,
		DataType: dataType, Data: variant.MustString(last), TextLen: uint64(len(last)),
	})
	return err
}
