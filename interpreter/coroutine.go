// Package interpreter implements the coroutine/VDOM executor, spec §4.6:
// the per-element after_pushed/select_child/on_popping lifecycle, the
// first-run/observing/cleaned-up stage machine, and the verb set that
// drives a document into existence from a parsed VDOM tree.
package interpreter

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/purc-run/hvml/document"
	"github.com/purc-run/hvml/herr"
	"github.com/purc-run/hvml/observer"
	"github.com/purc-run/hvml/render"
	"github.com/purc-run/hvml/timer"
	"github.com/purc-run/hvml/variant"
	"github.com/purc-run/hvml/vcm"
	"github.com/purc-run/hvml/vdom"
)

// Coroutine owns one document, its top-level VDOM, its variant
// document-scope bindings (including $TIMERS), its observer registry, and
// a renderer client — spec §3.6.
type Coroutine struct {
	ID  string
	Cfg Config

	Doc          *document.Document
	Root         *vdom.Node
	DocumentVars *vcm.Scope // document-scope bindings, parent of every frame's innermost scope
	ProcessVars  *vcm.Scope

	Timers    *timer.Set
	Observers *observer.Bus
	Renderer  *render.Client

	stack []*Frame
	stage Stage

	// obsMu serializes observer-triggered handler runs against each other,
	// since firings can arrive concurrently from timer goroutines or
	// variant listeners. Start's own first-run traversal does not take it.
	obsMu sync.Mutex

	logger *slog.Logger
	tracer trace.Tracer
}

// New creates a coroutine that will interpret root against doc, mirroring
// the teacher's interpreter.New(ctx, doc, config) shape.
func New(ctx context.Context, doc *document.Document, root *vdom.Node, cfg Config) *Coroutine {
	cfg = cfg.withDefaults()
	co := &Coroutine{
		ID:          uuid.NewString(),
		Cfg:         cfg,
		Doc:         doc,
		Root:        root,
		ProcessVars: vcm.NewScope(nil),
		logger:      cfg.Logger,
		tracer:      otel.Tracer("interpreter"),
		stage:       StageFirstRun,
	}
	co.DocumentVars = vcm.NewScope(co.ProcessVars)
	co.Observers = observer.New()
	co.Timers = timer.New(cfg.Clock, co.onTimerExpired)
	co.DocumentVars.Bind("TIMERS", co.Timers.Variant())
	if cfg.Transport != nil {
		co.Renderer = render.NewClient(cfg.Transport, "1.0")
	}
	return co
}

func (co *Coroutine) onTimerExpired(id string) {
	co.Observers.Fire(co.Timers.Variant(), "expired", id, nil)
}

// Stage reports the coroutine's current lifecycle stage.
func (co *Coroutine) Stage() Stage { return co.stage }

// Start drives the VDOM tree to completion: descend to the root, run
// every frame's after_pushed/select_child/on_popping cycle, issue the
// renderer load once the document is fully materialized, and transition to
// observing (spec §4.6.3). It returns once first-run interpretation
// finishes. Observation events are not queued: each bus firing runs the
// matching observe body through runObserverHandler on the firing goroutine.
func (co *Coroutine) Start(ctx context.Context) error {
	ctx, span := co.tracer.Start(ctx, "coroutine.start")
	defer span.End()

	root := &Frame{
		Node:     co.Root,
		Scope:    vcm.NewScope(co.DocumentVars),
		NextStep: StepAfterPushed,
	}
	co.stack = append(co.stack, root)

	if err := co.run(ctx); err != nil {
		return err
	}

	co.stage = StageObserving
	if co.Renderer != nil {
		markup := co.Doc.Serialize(document.OptSkipComment, nil)
		if err := co.Renderer.WriteDocument(ctx, render.TargetDOM, 1, dataTypeFor(co.Doc.Kind()), markup); err != nil {
			return herr.Wrap(herr.KindConnectionAborted, "issuing renderer load", err)
		}
	}
	return nil
}

func dataTypeFor(k document.Kind) render.DataType {
	switch k {
	case document.KindHTML:
		return render.DataHTML
	case document.KindXML:
		return render.DataXML
	case document.KindXGML:
		return render.DataXGML
	case document.KindPlain:
		return render.DataPlain
	default:
		return render.DataVoid
	}
}

// run executes the stack-driven frame lifecycle until the stack empties.
func (co *Coroutine) run(ctx context.Context) error {
	for len(co.stack) > 0 {
		f := co.stack[len(co.stack)-1]

		switch f.NextStep {
		case StepAfterPushed:
			if err := co.afterPushed(ctx, f); err != nil {
				if err := co.handleError(ctx, f, err); err != nil {
					return err
				}
				continue
			}
			f.NextStep = StepSelectChild

		case StepSelectChild:
			child, err := f.Verb.SelectChild(ctx, co, f)
			if err != nil {
				if err := co.handleError(ctx, f, err); err != nil {
					return err
				}
				continue
			}
			if child == nil {
				f.NextStep = StepOnPopping
				continue
			}
			childFrame := &Frame{Node: child, Scope: vcm.NewScope(f.Scope), NextStep: StepAfterPushed}
			co.stack = append(co.stack, childFrame)

		case StepOnPopping:
			done, err := f.Verb.OnPopping(ctx, co, f)
			if err != nil {
				if err := co.handleError(ctx, f, err); err != nil {
					return err
				}
				continue
			}
			if !done {
				if err := f.Verb.Rerun(ctx, co, f); err != nil {
					if err := co.handleError(ctx, f, err); err != nil {
						return err
					}
					continue
				}
				f.NextStep = StepSelectChild
				continue
			}
			f.Scope.Release()
			co.stack = co.stack[:len(co.stack)-1]
		}
	}
	return nil
}

func (co *Coroutine) afterPushed(ctx context.Context, f *Frame) error {
	ctx, span := co.tracer.Start(ctx, fmt.Sprintf("verb.%s.after_pushed", f.Node.Tag))
	defer span.End()

	if f.Verb == nil {
		f.Verb = resolveVerb(f.Node)
	}
	f.ErrorHandlers, f.ExceptHandlers = collectHandlers(f.Node)
	if len(co.stack) > 1 {
		parent := co.stack[len(co.stack)-2]
		f.DocTarget = parent.DocTarget
		f.Silently = parent.Silently
	}
	if f.Node.HasAttr("silently") {
		v, err := vcm.Eval(&vcm.Context{Scope: f.Scope}, f.Node.Attr("silently"))
		if err == nil {
			f.Silently = variant.Stringify(v) == "true"
			v.Unref()
		}
	}
	return f.Verb.AfterPushed(ctx, co, f)
}

// handleError walks the stack from f upward looking for a matching
// except/error handler (spec §4.6.7, §7). If none matches, the error is
// returned for Start to surface.
func (co *Coroutine) handleError(ctx context.Context, f *Frame, cause error) error {
	kind, _ := herr.KindOf(cause)
	for i := len(co.stack) - 1; i >= 0; i-- {
		frame := co.stack[i]
		if handler := matchHandler(frame.ErrorHandlers, string(kind)); handler != nil {
			return co.runHandler(ctx, frame, handler, cause)
		}
		if handler := matchHandler(frame.ExceptHandlers, string(kind)); handler != nil {
			return co.runHandler(ctx, frame, handler, cause)
		}
	}
	co.logger.Error("unhandled hvml error", "kind", kind, "error", cause)
	return cause
}

func matchHandler(handlers []*vdom.Node, kind string) *vdom.Node {
	for _, h := range handlers {
		t := h.Attr("type")
		if t == nil {
			continue
		}
		v, err := vcm.Eval(&vcm.Context{}, t)
		if err != nil {
			continue
		}
		s := variant.Stringify(v)
		v.Unref()
		if s == "*" || s == kind {
			return h
		}
	}
	return nil
}

// runHandler executes handler's body as a fresh sub-tree against the
// failing frame's scope, binding its result as that frame's ResultVar, and
// truncates the stack back to (and including) that frame so interpretation
// resumes past it. An error raised inside the handler itself is returned
// unhandled: handleError passes it back to the driver loop, which stops
// with that error, and no further handler is searched for.
func (co *Coroutine) runHandler(ctx context.Context, owner *Frame, handler *vdom.Node, cause error) error {
	sub := &Coroutine{
		ID: co.ID, Cfg: co.Cfg, Doc: co.Doc, ProcessVars: co.ProcessVars,
		DocumentVars: co.DocumentVars, Timers: co.Timers, Observers: co.Observers,
		Renderer: co.Renderer, logger: co.logger, tracer: co.tracer, stage: co.stage,
	}
	handlerScope := vcm.NewScope(owner.Scope)
	handlerScope.Bind("_cause", variant.MustString(cause.Error()))
	frame := &Frame{Node: handler, Scope: handlerScope, DocTarget: owner.DocTarget, NextStep: StepAfterPushed}
	sub.stack = []*Frame{frame}
	if err := sub.run(ctx); err != nil {
		return err
	}
	owner.ResultVar = frame.ResultVar
	// truncate co.stack back to owner (exclusive of frames above it) and
	// resume past it as if it had popped normally.
	for len(co.stack) > 0 && co.stack[len(co.stack)-1] != owner {
		co.stack[len(co.stack)-1].Scope.Release()
		co.stack = co.stack[:len(co.stack)-1]
	}
	if len(co.stack) > 0 {
		co.stack[len(co.stack)-1].Scope.Release()
		co.stack = co.stack[:len(co.stack)-1]
	}
	return nil
}

// runObserverHandler executes an observe verb's body as a standalone frame
// stack in reaction to a bus-delivered event (spec §4.5). It is serialized
// against other firings on this coroutine via obsMu, since the bus may call
// it from a timer goroutine or a variant listener concurrently with another
// event's delivery.
func (co *Coroutine) runObserverHandler(ctx context.Context, body *vdom.Node, outer *vcm.Scope, target *document.Node, ev observer.Event) {
	co.obsMu.Lock()
	defer co.obsMu.Unlock()

	scope := vcm.NewScope(outer)
	scope.Bind("_event", variant.MustString(ev.Name))
	scope.Bind("_sub", variant.MustString(ev.Sub))
	if ev.Payload != nil {
		scope.Bind("_payload", ev.Payload)
	}
	defer scope.Release()

	if target == nil {
		target = co.Doc.RootElement()
	}
	frame := &Frame{Node: body, Verb: &handlerVerb{}, Scope: scope, DocTarget: target, NextStep: StepAfterPushed}
	sub := &Coroutine{
		ID: co.ID, Cfg: co.Cfg, Doc: co.Doc, ProcessVars: co.ProcessVars,
		DocumentVars: co.DocumentVars, Timers: co.Timers, Observers: co.Observers,
		Renderer: co.Renderer, logger: co.logger, tracer: co.tracer, stage: co.stage,
	}
	sub.stack = []*Frame{frame}
	if err := sub.run(ctx); err != nil {
		co.logger.Error("observer handler failed", "event", ev.Name, "sub", ev.Sub, "error", err)
	}
}

// Shutdown releases coroutine-owned resources (timers, and via the
// document's own GC-backed teardown, the variant tree once unreferenced).
func (co *Coroutine) Shutdown() {
	co.stage = StageCleanedUp
	co.Timers.Shutdown()
	if co.Renderer != nil {
		co.Renderer.Close()
	}
}
