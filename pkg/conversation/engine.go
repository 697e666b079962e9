// Package conversation is the per-user state machine behind the chat bot.
// Every inbound event is handled against the user's session and answered with one render.
package conversation

import (
	"context"
	"strings"
	"time"

	"itinvent-bot/internal/pkg/logger"
	"itinvent-bot/pkg/access"
	"itinvent-bot/pkg/action"
	"itinvent-bot/pkg/location"
	"itinvent-bot/pkg/lock"
	"itinvent-bot/pkg/render"
	"itinvent-bot/pkg/store"
	"itinvent-bot/pkg/suggest"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	busyText = "Still working on your previous message, please wait."

	defaultListPageSize = 5
	defaultMaxItems     = 20
)

// Dependencies are the collaborators of an Engine. Recognizer, Exporter, Publisher, Observer and Audit are optional.
type Dependencies struct {
	Access     Authorizer
	Sessions   SessionStore
	Router     DataRouter
	Locations  *location.Resolver
	Suggester  *suggest.Suggester
	Guard      lock.Guard
	Documents  DocumentGenerator
	Recognizer Recognizer
	Exporter   Exporter
	Publisher  EventPublisher
	Observer   Observer
	Logger     logger.ILogger
	Audit      logger.ILogger
}

type Options struct {
	// ListPageSize is the page size of suggestion and status lists.
	ListPageSize int
	// MaxItems caps the equipment collected by one transfer.
	MaxItems int
}

type handlerKey struct {
	mode    string
	feature string
}

type handlerFunc func(ctx context.Context, sess *store.Session, a action.Action) *render.Render

type Engine struct {
	access     Authorizer
	sessions   SessionStore
	router     DataRouter
	locations  *location.Resolver
	suggester  *suggest.Suggester
	guard      lock.Guard
	documents  DocumentGenerator
	recognizer Recognizer
	exporter   Exporter
	publisher  EventPublisher
	observer   Observer
	logger     logger.ILogger
	audit      logger.ILogger

	opts      Options
	validator *fieldValidator
	flows     map[store.Mode]*Flow
	order     []store.Mode
	handlers  map[handlerKey]handlerFunc
	tracer    trace.Tracer
	now       func() time.Time
}

func NewEngine(deps Dependencies, opts Options) *Engine {
	if opts.ListPageSize < 1 {
		opts.ListPageSize = defaultListPageSize
	}
	if opts.MaxItems < 1 {
		opts.MaxItems = defaultMaxItems
	}
	if deps.Observer == nil {
		deps.Observer = nopObserver{}
	}
	if deps.Logger == nil {
		deps.Logger = logger.NewNopLogger()
	}
	if deps.Audit == nil {
		deps.Audit = logger.NewNopLogger()
	}
	if deps.Guard == nil {
		deps.Guard = lock.NewLocalGuard()
	}
	if deps.Suggester == nil {
		deps.Suggester = suggest.NewSuggester(suggest.DefaultThreshold)
	}

	e := &Engine{
		access:     deps.Access,
		sessions:   deps.Sessions,
		router:     deps.Router,
		locations:  deps.Locations,
		suggester:  deps.Suggester,
		guard:      deps.Guard,
		documents:  deps.Documents,
		recognizer: deps.Recognizer,
		exporter:   deps.Exporter,
		publisher:  deps.Publisher,
		observer:   deps.Observer,
		logger:     deps.Logger,
		audit:      deps.Audit,
		opts:       opts,
		validator:  newFieldValidator(),
		tracer:     otel.Tracer("itinvent-bot/conversation"),
		now:        time.Now,
	}

	flows := []*Flow{e.transferFlow(), e.workFlow(), e.unfoundFlow()}
	e.flows = make(map[store.Mode]*Flow, len(flows))
	for _, f := range flows {
		e.flows[f.Mode] = f
		e.order = append(e.order, f.Mode)
	}
	e.registerHandlers()

	return e
}

// HandleEvent processes one inbound event for its user and returns what to show next.
func (e *Engine) HandleEvent(ctx context.Context, ev Event) *render.Render {
	ctx, span := e.tracer.Start(ctx, "conversation.HandleEvent", trace.WithAttributes(
		attribute.String("event.kind", string(ev.Kind)),
		attribute.String("user.id", ev.User.ID),
	))
	defer span.End()

	out := e.handle(ctx, ev)

	span.SetAttributes(attribute.String("render.kind", string(out.Kind)))
	e.observer.ObserveEvent(string(ev.Kind), out.Kind)
	return out
}

func (e *Engine) handle(ctx context.Context, ev Event) *render.Render {
	if !e.access.IsAuthorized(ctx, ev.User) {
		e.logger.Warn("CONVERSATION", "Unauthorized event rejected", map[string]interface{}{
			"user_id": ev.User.ID,
		})
		return render.Denied(access.DenialText)
	}

	release, ok := e.guard.TryAcquire(ctx, ev.User.ID)
	if !ok {
		return render.Busy(busyText)
	}
	defer release()

	sess, found := e.sessions.Get(ev.User.ID)
	if !found {
		sess = store.NewSession(ev.User.ID)
	}

	out := e.route(ctx, sess, ev)

	if sess.State.Terminal() {
		e.sessions.Delete(sess.UserID)
	} else {
		sess.UpdatedAt = e.now()
		e.sessions.Save(sess)
	}
	return out
}

func (e *Engine) route(ctx context.Context, sess *store.Session, ev Event) *render.Render {
	switch ev.Kind {
	case EventAction:
		a, err := action.Parse(ev.Action)
		if err != nil {
			e.logger.Debug("CONVERSATION", "Malformed action token", map[string]interface{}{
				"user_id": sess.UserID,
				"token":   ev.Action,
			})
			return e.clarify(sess, "This button is not valid any more.")
		}
		return e.dispatch(ctx, sess, a)

	case EventText:
		text := strings.TrimSpace(ev.Text)
		if strings.HasPrefix(text, "/") {
			return e.command(ctx, sess, text)
		}
		if !sess.Active() {
			if sess.AwaitingManual == employeeQuery {
				return e.employeeQuery(ctx, sess, text)
			}
			return e.search(ctx, sess, text)
		}
		return e.textInput(ctx, sess, text)

	case EventPhoto:
		if !sess.Active() {
			return e.searchPhoto(ctx, sess, ev.Photo)
		}
		return e.photoInput(ctx, sess, ev.Photo)
	}

	return e.clarify(sess, "Unsupported message.")
}

func (e *Engine) dispatch(ctx context.Context, sess *store.Session, a action.Action) *render.Render {
	h, ok := e.handlers[handlerKey{mode: a.Mode, feature: a.Feature}]
	if !ok {
		return e.clarify(sess, "This button is not valid any more.")
	}
	return h(ctx, sess, a)
}

func (e *Engine) registerHandlers() {
	e.handlers = make(map[handlerKey]handlerFunc)

	for _, mode := range e.order {
		m := string(mode)
		flow := e.flows[mode]

		e.handlers[handlerKey{m, "start"}] = e.onStart
		e.handlers[handlerKey{m, "cancel"}] = e.only(e.onCancel, action.OpTrigger)
		e.handlers[handlerKey{m, "confirm"}] = e.inFlow(e.only(e.onConfirm, action.OpTrigger))
		e.handlers[handlerKey{m, "skip"}] = e.inFlow(e.only(e.onSkip, action.OpTrigger))
		e.handlers[handlerKey{m, "done"}] = e.inFlow(e.only(e.onDone, action.OpTrigger))
		e.handlers[handlerKey{m, "edit"}] = e.inFlow(e.only(e.onEdit, action.OpSelect))
		e.handlers[handlerKey{m, "retry"}] = e.inFlow(e.only(e.onRetry, action.OpTrigger))
		for _, step := range flow.Steps {
			e.handlers[handlerKey{m, step.Name}] = e.inFlow(e.onStep)
		}
	}

	e.handlers[handlerKey{action.ModeDatabase, "menu"}] = e.onDatabaseMenu
	e.handlers[handlerKey{action.ModeDatabase, "select"}] = e.onDatabaseSelect

	e.handlers[handlerKey{action.ModeSearch, "employee"}] = e.idleOnly(e.onEmployeeSearch)
	e.handlers[handlerKey{action.ModeSearch, "equipment"}] = e.idleOnly(e.onEmployeeEquipment)
	e.handlers[handlerKey{action.ModeSearch, "export"}] = e.idleOnly(e.only(e.onEmployeeExport, action.OpTrigger))
	e.handlers[handlerKey{action.ModeExport, "menu"}] = e.idleOnly(e.only(e.onExportMenu, action.OpTrigger))
	e.handlers[handlerKey{action.ModeExport, "records"}] = e.idleOnly(e.only(e.onExportRecords, action.OpSelect))
}

// only rejects tokens whose operation is not one of ops.
func (e *Engine) only(h handlerFunc, ops ...action.Op) handlerFunc {
	return func(ctx context.Context, sess *store.Session, a action.Action) *render.Render {
		for _, op := range ops {
			if a.Op == op {
				return h(ctx, sess, a)
			}
		}
		return e.clarify(sess, "This button is not valid any more.")
	}
}

// inFlow rejects buttons that do not belong to the workflow currently in progress.
func (e *Engine) inFlow(h handlerFunc) handlerFunc {
	return func(ctx context.Context, sess *store.Session, a action.Action) *render.Render {
		if !sess.Active() || string(sess.Mode) != a.Mode {
			return e.clarify(sess, "This button belongs to a workflow that is no longer active.")
		}
		return h(ctx, sess, a)
	}
}

func (e *Engine) flow(sess *store.Session) *Flow {
	return e.flows[sess.Mode]
}

// onStart accepts a plain trigger, or a serial argument for workflows that open with a serial step.
func (e *Engine) onStart(ctx context.Context, sess *store.Session, a action.Action) *render.Render {
	mode := store.Mode(a.Mode)
	switch a.Op {
	case action.OpTrigger:
		return e.start(ctx, sess, mode, "")
	case action.OpSelect:
		if flow, ok := e.flows[mode]; ok && flow.Steps[0].Kind == StepSerial {
			return e.start(ctx, sess, mode, a.Arg)
		}
	}
	return e.clarify(sess, "This button is not valid any more.")
}

// onCancel ignores cancel buttons left over from another workflow.
func (e *Engine) onCancel(ctx context.Context, sess *store.Session, a action.Action) *render.Render {
	if sess.Active() && string(sess.Mode) != a.Mode {
		return e.clarify(sess, "This button belongs to a workflow that is no longer active.")
	}
	return e.cancel(sess)
}

// start begins mode, discarding any workflow in progress. A non-empty serial pre-fills the first serial step.
func (e *Engine) start(ctx context.Context, sess *store.Session, mode store.Mode, serial string) *render.Render {
	flow, ok := e.flows[mode]
	if !ok {
		return e.clarify(sess, "Unknown workflow.")
	}

	if sess.Active() {
		e.logger.Info("CONVERSATION", "Workflow replaced by a new one", map[string]interface{}{
			"user_id":  sess.UserID,
			"previous": string(sess.Mode),
			"state":    string(sess.State),
			"next":     string(mode),
		})
	}

	sess.Begin(mode, e.router.Active(ctx, sess.UserID), store.StepState(mode, flow.Steps[0].Name))

	e.logger.Info("CONVERSATION", "Workflow started", map[string]interface{}{
		"user_id":     sess.UserID,
		"mode":        string(mode),
		"database_id": sess.DatabaseID,
	})

	if serial != "" && flow.Steps[0].Kind == StepSerial {
		return e.textInput(ctx, sess, serial)
	}
	return e.advance(ctx, sess)
}

func (e *Engine) cancel(sess *store.Session) *render.Render {
	if !sess.Active() {
		if sess.AwaitingManual != "" || sess.Slices[store.ModeSearch] != nil {
			sess.Reset()
			return render.Prompt("Search closed.", e.menuButtons()...)
		}
		return render.Prompt("There is nothing to cancel.", e.menuButtons()...)
	}

	e.logger.Info("CONVERSATION", "Workflow cancelled", map[string]interface{}{
		"user_id": sess.UserID,
		"mode":    string(sess.Mode),
		"state":   string(sess.State),
	})

	sess.Reset()
	sess.State = store.StateCancelled
	return render.Terminal("Cancelled. Nothing was saved.")
}

// clarify rejects input without touching the session.
func (e *Engine) clarify(sess *store.Session, text string) *render.Render {
	if sess.Active() {
		return render.Clarify(text, e.cancelButton(sess.Mode))
	}
	return render.Clarify(text, e.menuButtons()...)
}

// failure reports a backend error. The session stays where it was and can retry.
func (e *Engine) failure(sess *store.Session, collaborator string, err error) *render.Render {
	e.observer.ObserveCollaboratorFailure(collaborator)
	e.logger.Error("CONVERSATION", "Collaborator failed", map[string]interface{}{
		"user_id":      sess.UserID,
		"collaborator": collaborator,
		"state":        string(sess.State),
		"error":        err.Error(),
	})

	text := "The inventory database is not available right now. Try again in a moment."
	if !sess.Active() {
		return render.Failure(text, true, e.menuButtons()...)
	}
	m := string(sess.Mode)
	return render.Failure(text, true,
		render.Button{Label: "Retry", Token: action.Trigger(m, "retry")},
		e.cancelButton(sess.Mode),
	)
}

func (e *Engine) cancelButton(mode store.Mode) render.Button {
	return render.Button{Label: "Cancel", Token: action.Trigger(string(mode), "cancel")}
}

func (e *Engine) menuButtons() []render.Button {
	buttons := make([]render.Button, 0, len(e.order)+3)
	for _, mode := range e.order {
		buttons = append(buttons, render.Button{
			Label: e.flows[mode].Title,
			Token: action.Trigger(string(mode), "start"),
		})
	}
	buttons = append(buttons, render.Button{Label: "Find by employee", Token: action.Trigger(action.ModeSearch, "employee")})
	if e.exporter != nil {
		buttons = append(buttons, render.Button{Label: "Export", Token: action.Trigger(action.ModeExport, "menu")})
	}
	return append(buttons, render.Button{Label: "Database", Token: action.Trigger(action.ModeDatabase, "menu")})
}
