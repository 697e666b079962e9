package conversation

import (
	"context"
	"fmt"
	"strings"

	"itinvent-bot/internal/entity"
	"itinvent-bot/pkg/action"
	"itinvent-bot/pkg/events"
	"itinvent-bot/pkg/render"
	"itinvent-bot/pkg/store"

	"github.com/google/uuid"
)

// enterConfirm drops values and equipment of steps that no longer apply and shows the summary.
// The record id is assigned here once and survives edits and failed commits.
func (e *Engine) enterConfirm(sess *store.Session) *render.Render {
	flow := e.flow(sess)

	keep := make(map[string]bool)
	collectsItems := false
	for _, step := range flow.applicable(sess) {
		keep[step.Name] = true
		if step.Kind == StepPhotos || (step.Kind == StepSerial && step.Serial == SerialExisting) {
			collectsItems = true
		}
	}
	if !collectsItems {
		sess.Items = nil
	}
	for _, name := range flow.Extra {
		keep[name] = true
	}
	for name := range sess.Fields {
		if !keep[name] {
			delete(sess.Fields, name)
		}
	}

	sess.State = store.ConfirmState(flow.Mode)
	sess.Editing = ""
	sess.AwaitingManual = ""
	if sess.RecordID == "" {
		sess.RecordID = uuid.NewString()
	}

	return e.renderConfirm(sess)
}

func (e *Engine) renderConfirm(sess *store.Session) *render.Render {
	flow := e.flow(sess)
	m := string(flow.Mode)

	r := render.Confirmation(fmt.Sprintf("%s. Check the data and confirm.", flow.Title), e.summary(sess, flow),
		render.Button{Label: "Confirm", Token: action.Trigger(m, "confirm")},
	)
	for _, step := range flow.applicable(sess) {
		r.With(render.Button{Label: "Edit: " + step.Label, Token: action.Select(m, "edit", step.Name)})
	}
	return r.With(e.cancelButton(flow.Mode))
}

func (e *Engine) summary(sess *store.Session, flow *Flow) []render.Line {
	var lines []render.Line

	line := func(label, name string) render.Line {
		fv := sess.Fields[name]
		value := fv.Value
		if value == "" {
			value = "not set"
		}
		return render.Line{Label: label, Value: value, Unverified: !fv.Verified && fv.Source != sourceSkipped}
	}

	for _, step := range flow.applicable(sess) {
		switch step.Kind {
		case StepPhotos:
			for i := range sess.Items {
				lines = append(lines, render.Line{
					Label: fmt.Sprintf("%d. %s", i+1, sess.Items[i].Serial),
					Value: describe(&sess.Items[i]),
				})
			}
		case StepChoice:
			l := line(step.Label, step.Name)
			if c, ok := step.choice(sess.Field(step.Name)); ok {
				l.Value = c.Label
			}
			lines = append(lines, l)
		default:
			lines = append(lines, line(step.Label, step.Name))
		}
	}

	if sess.HasField("department") {
		lines = append(lines, line("Department", "department"))
	}

	return lines
}

func (e *Engine) onConfirm(ctx context.Context, sess *store.Session, _ action.Action) *render.Render {
	if sess.State != store.ConfirmState(sess.Mode) {
		return e.clarify(sess, "There is nothing to confirm yet.")
	}
	return e.commit(ctx, sess)
}

// commit generates the documents and appends the record. The session moves to committed
// only after both succeed; on failure it stays in confirmation with the same record id.
func (e *Engine) commit(ctx context.Context, sess *store.Session) *render.Render {
	flow := e.flow(sess)
	rec, err := e.record(sess)
	if err != nil {
		return e.commitFailure(sess, "session", err)
	}

	refs, err := e.documents.Generate(ctx, rec)
	if err != nil {
		return e.commitFailure(sess, "documents", err)
	}
	rec.DocumentRefs = refs

	if err := e.router.AppendRecord(ctx, rec); err != nil {
		return e.commitFailure(sess, "records", err)
	}

	sess.State = store.StateCommitted
	e.observer.ObserveCommit(rec.Mode, nil)

	e.audit.Info("AUDIT", "Workflow committed", map[string]interface{}{
		"record_id":   rec.Id.String(),
		"user_id":     rec.UserId,
		"mode":        rec.Mode,
		"database_id": rec.DatabaseId,
		"serial":      rec.Serial,
		"items":       len(rec.Items),
		"documents":   rec.DocumentRefs,
	})
	e.publish(ctx, rec)

	text := flow.Done
	if len(refs) > 0 {
		text += "\nDocuments: " + strings.Join(refs, ", ")
	}
	return render.Terminal(text)
}

func (e *Engine) commitFailure(sess *store.Session, collaborator string, err error) *render.Render {
	e.observer.ObserveCollaboratorFailure(collaborator)
	e.observer.ObserveCommit(string(sess.Mode), err)
	e.logger.Error("CONVERSATION", "Commit failed", map[string]interface{}{
		"user_id":      sess.UserID,
		"mode":         string(sess.Mode),
		"record_id":    sess.RecordID,
		"collaborator": collaborator,
		"error":        err.Error(),
	})

	m := string(sess.Mode)
	return render.Failure("Could not save the workflow. Your data is kept: press Retry or cancel.", true,
		render.Button{Label: "Retry", Token: action.Trigger(m, "confirm")},
		e.cancelButton(sess.Mode),
	)
}

func (e *Engine) record(sess *store.Session) (*entity.WorkflowRecord, error) {
	id, err := uuid.Parse(sess.RecordID)
	if err != nil {
		return nil, fmt.Errorf("record id %q: %w", sess.RecordID, err)
	}

	fields := make(map[string]store.FieldValue, len(sess.Fields))
	for k, v := range sess.Fields {
		fields[k] = v
	}
	items := make([]store.Equipment, len(sess.Items))
	copy(items, sess.Items)

	return &entity.WorkflowRecord{
		Id:         id,
		Mode:       string(sess.Mode),
		DatabaseId: sess.DatabaseID,
		UserId:     sess.UserID,
		Serial:     sess.Field("serial"),
		Fields:     fields,
		Items:      items,
		CreatedAt:  e.now(),
	}, nil
}

func (e *Engine) publish(ctx context.Context, rec *entity.WorkflowRecord) {
	if e.publisher == nil {
		return
	}

	serials := make([]string, 0, len(rec.Items))
	for _, it := range rec.Items {
		serials = append(serials, it.Serial)
	}

	ev := events.BaseEvent{
		Type: events.TypeWorkflowCommitted,
		Data: map[string]interface{}{
			"record_id":   rec.Id.String(),
			"mode":        rec.Mode,
			"database_id": rec.DatabaseId,
			"user_id":     rec.UserId,
			"serial":      rec.Serial,
			"serials":     serials,
			"documents":   rec.DocumentRefs,
		},
		OccurredAt: rec.CreatedAt,
	}
	if err := e.publisher.Publish(ctx, ev); err != nil {
		e.observer.ObserveCollaboratorFailure("publisher")
		e.logger.Warn("CONVERSATION", "Failed to publish commit event", map[string]interface{}{
			"record_id": rec.Id.String(),
			"error":     err.Error(),
		})
	}
}
