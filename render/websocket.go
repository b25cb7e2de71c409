package render

import (
	"context"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/purc-run/hvml/herr"
)

// wireRequest/wireResponse are the JSON shapes exchanged over the
// websocket connection, mirroring Request/Response's fields (spec §6's
// "Renderer message envelope").
type wireRequest struct {
	Target      Target   `json:"target"`
	TargetValue uint64   `json:"targetValue"`
	Operation   Operation `json:"operation"`
	RequestID   string   `json:"requestId"`
	SourceURI   string   `json:"sourceUri,omitempty"`
	ElementType ElementType `json:"elementType"`
	Element     string   `json:"element"`
	Property    string   `json:"property,omitempty"`
	DataType    DataType `json:"dataType"`
	Data        string   `json:"data,omitempty"`
	TextLen     uint64   `json:"textLen,omitempty"`
}

type wireResponse struct {
	RequestID   string   `json:"requestId"`
	RetCode     int      `json:"retCode"`
	ResultValue uint64   `json:"resultValue"`
	DataType    DataType `json:"dataType"`
	Data        string   `json:"data,omitempty"`
}

// WebSocketTransport is the remote renderer transport: one connection
// shared by every coroutine in the instance, requests correlated by
// request-id and dispatched to whichever goroutine is waiting on that id —
// the same request/response correlation discipline spec §9 draws out of
// HBDBus's handshake (stream-hbdbus.c), applied over a plain websocket
// instead of HBDBus's own wire format.
type WebSocketTransport struct {
	conn *websocket.Conn

	mu      sync.Mutex
	waiters map[string]chan *wireResponse
}

// DialWebSocket connects to url and starts the read pump that demuxes
// responses to their waiting requester by request-id.
func DialWebSocket(url string) (*WebSocketTransport, error) {
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		return nil, herr.Wrap(herr.KindConnectionAborted, "dialing renderer websocket", err)
	}
	t := &WebSocketTransport{conn: conn, waiters: make(map[string]chan *wireResponse)}
	go t.readPump()
	return t, nil
}

func (t *WebSocketTransport) readPump() {
	for {
		var resp wireResponse
		if err := t.conn.ReadJSON(&resp); err != nil {
			t.mu.Lock()
			for _, ch := range t.waiters {
				close(ch)
			}
			t.waiters = nil
			t.mu.Unlock()
			return
		}
		t.mu.Lock()
		ch, ok := t.waiters[resp.RequestID]
		if ok {
			delete(t.waiters, resp.RequestID)
		}
		t.mu.Unlock()
		if ok {
			ch <- &resp
		}
	}
}

func (t *WebSocketTransport) Send(ctx context.Context, req *Request) (*Response, error) {
	wr := wireRequest{
		Target: req.Target, TargetValue: req.TargetValue, Operation: req.Operation,
		RequestID: req.RequestID, SourceURI: req.SourceURI, ElementType: req.ElementType,
		Element: req.Element, Property: req.Property, DataType: req.DataType, TextLen: req.TextLen,
	}
	if req.Data != nil {
		wr.Data = req.Data.Str()
	}

	ch := make(chan *wireResponse, 1)
	t.mu.Lock()
	t.waiters[req.RequestID] = ch
	t.mu.Unlock()

	if err := t.conn.WriteJSON(wr); err != nil {
		return nil, herr.Wrap(herr.KindFailedWrite, "writing renderer request", err)
	}

	select {
	case resp, ok := <-ch:
		if !ok {
			return nil, herr.New(herr.KindConnectionAborted, "renderer connection closed")
		}
		return wireToResponse(resp), nil
	case <-ctx.Done():
		t.mu.Lock()
		delete(t.waiters, req.RequestID)
		t.mu.Unlock()
		return nil, ctx.Err()
	}
}

func wireToResponse(w *wireResponse) *Response {
	return &Response{RetCode: w.RetCode, ResultValue: w.ResultValue, DataType: w.DataType}
}

func (t *WebSocketTransport) Close() error {
	return t.conn.Close()
}
