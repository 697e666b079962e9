package conversation

import (
	"context"
	"fmt"
	"strings"

	"itinvent-bot/pkg/action"
	"itinvent-bot/pkg/picker"
	"itinvent-bot/pkg/render"
	"itinvent-bot/pkg/store"
	"itinvent-bot/pkg/suggest"
)

const (
	// employeeQuery marks an idle session whose next text is an employee name.
	employeeQuery = "search_employee"

	busyWorkflowText = "Finish or cancel the current workflow first."
)

// exportModes are the record filters offered by the export menu. "all" exports every mode.
var exportModes = []struct{ arg, label string }{
	{string(store.ModeTransfer), "Transfers"},
	{string(store.ModeWork), "Works"},
	{string(store.ModeUnfound), "Unfound equipment"},
	{"all", "All records"},
}

// idleOnly keeps search and export buttons from interleaving with a workflow.
func (e *Engine) idleOnly(h handlerFunc) handlerFunc {
	return func(ctx context.Context, sess *store.Session, a action.Action) *render.Render {
		if sess.Active() {
			return e.clarify(sess, busyWorkflowText)
		}
		return h(ctx, sess, a)
	}
}

func (e *Engine) onEmployeeSearch(ctx context.Context, sess *store.Session, a action.Action) *render.Render {
	switch a.Op {
	case action.OpNavigate:
		picker.Navigate(sess, store.ModeSearch, "employee", e.opts.ListPageSize, a.Dir)
		return e.employeePage(sess)
	case action.OpSelect:
		sel, err := picker.Select(sess, store.ModeSearch, "employee", a.Arg)
		if err != nil || sel.Manual {
			return e.clarify(sess, "This button is not valid any more.")
		}
		return e.showEmployee(ctx, sess, sel.Value)
	}

	sess.AwaitingManual = employeeQuery
	return render.Prompt("Type the employee's name.", e.menuButtons()...)
}

// employeeQuery resolves a typed name against the employees of the active database.
func (e *Engine) employeeQuery(ctx context.Context, sess *store.Session, text string) *render.Render {
	name, err := e.validator.Person(text)
	if err != nil {
		return e.clarify(sess, userMessage(err))
	}

	dbID := e.router.Active(ctx, sess.UserID)
	b, err := e.router.Backend(ctx, dbID)
	if err != nil {
		return e.failure(sess, "inventory", err)
	}
	all, err := b.Employees(ctx)
	if err != nil {
		return e.failure(sess, "inventory", err)
	}

	matches := e.suggester.Suggest(name, all, 0)
	if len(matches) == 0 {
		sess.AwaitingManual = employeeQuery
		return render.Prompt(fmt.Sprintf("No employee similar to %q in %s. Try another spelling.", name, dbID),
			e.menuButtons()...)
	}
	if len(matches) == 1 || suggest.Normalize(matches[0].Candidate) == suggest.Normalize(name) {
		return e.showEmployee(ctx, sess, matches[0].Candidate)
	}

	sess.AwaitingManual = ""
	picker.Load(sess, store.ModeSearch, "employee", suggest.Names(matches))
	return e.employeePage(sess)
}

func (e *Engine) employeePage(sess *store.Session) *render.Render {
	return picker.Page(sess, store.ModeSearch, "employee", picker.Options{
		Title:    "Choose the employee",
		PageSize: e.opts.ListPageSize,
		Extra:    e.menuButtons(),
	})
}

// showEmployee lists the equipment held by name.
func (e *Engine) showEmployee(ctx context.Context, sess *store.Session, name string) *render.Render {
	dbID := e.router.Active(ctx, sess.UserID)
	b, err := e.router.Backend(ctx, dbID)
	if err != nil {
		return e.failure(sess, "inventory", err)
	}
	items, err := b.FindByEmployee(ctx, name, true)
	if err != nil {
		return e.failure(sess, "inventory", err)
	}

	sess.AwaitingManual = ""
	e.logger.Info("CONVERSATION", "Employee equipment listed", map[string]interface{}{
		"user_id":     sess.UserID,
		"database_id": dbID,
		"employee":    name,
		"items":       len(items),
	})

	if len(items) == 0 {
		delete(sess.Slices, store.ModeSearch)
		return render.Prompt(fmt.Sprintf("%s has no equipment in %s.", name, dbID), e.menuButtons()...)
	}

	labels := make([]string, len(items))
	serials := make([]string, len(items))
	for i := range items {
		serials[i] = items[i].Serial
		labels[i] = items[i].Serial
		if kind := strings.TrimSpace(strings.Join(nonEmpty(items[i].Type, items[i].Model), ", ")); kind != "" {
			labels[i] += " · " + kind
		}
	}
	picker.Load(sess, store.ModeSearch, "owner", []string{name})
	picker.Load(sess, store.ModeSearch, "equipment", labels)
	picker.Load(sess, store.ModeSearch, "serials", serials)

	return e.equipmentPage(sess)
}

func (e *Engine) equipmentPage(sess *store.Session) *render.Render {
	owner := picker.Universe(sess, store.ModeSearch, "owner")
	if len(owner) == 0 {
		return e.clarify(sess, "Search for an employee first.")
	}

	var extra []render.Button
	if e.exporter != nil {
		extra = append(extra, render.Button{Label: "Export to Excel", Token: action.Trigger(action.ModeSearch, "export")})
	}
	extra = append(extra, e.menuButtons()...)

	return picker.Page(sess, store.ModeSearch, "equipment", picker.Options{
		Title:    fmt.Sprintf("Equipment of %s: %d items", owner[0], len(picker.Items(sess, store.ModeSearch, "equipment"))),
		PageSize: e.opts.ListPageSize,
		Extra:    extra,
	})
}

func (e *Engine) onEmployeeEquipment(ctx context.Context, sess *store.Session, a action.Action) *render.Render {
	switch a.Op {
	case action.OpNavigate:
		picker.Navigate(sess, store.ModeSearch, "equipment", e.opts.ListPageSize, a.Dir)
	case action.OpSelect:
		sel, err := picker.Select(sess, store.ModeSearch, "equipment", a.Arg)
		serials := picker.Items(sess, store.ModeSearch, "serials")
		if err != nil || sel.Manual || sel.Index >= len(serials) {
			return e.clarify(sess, "This button is not valid any more.")
		}
		r := e.showSerial(ctx, sess, serials[sel.Index])
		if r.Kind == render.KindResult {
			back := render.Button{Label: "Back to the list", Token: action.Trigger(action.ModeSearch, "equipment")}
			r.Buttons = append([]render.Button{back}, r.Buttons...)
		}
		return r
	}
	return e.equipmentPage(sess)
}

// onEmployeeExport writes the current employee's equipment to a workbook.
func (e *Engine) onEmployeeExport(ctx context.Context, sess *store.Session, _ action.Action) *render.Render {
	if e.exporter == nil {
		return e.clarify(sess, "Export is not available.")
	}
	owner := picker.Universe(sess, store.ModeSearch, "owner")
	if len(owner) == 0 {
		return e.clarify(sess, "Search for an employee first.")
	}

	b, err := e.router.Backend(ctx, e.router.Active(ctx, sess.UserID))
	if err != nil {
		return e.failure(sess, "inventory", err)
	}
	items, err := b.FindByEmployee(ctx, owner[0], true)
	if err != nil {
		return e.failure(sess, "inventory", err)
	}

	ref, err := e.exporter.ExportEquipment(ctx, owner[0], items)
	if err != nil {
		return e.failure(sess, "export", err)
	}

	r := render.Result(fmt.Sprintf("Equipment of %s: %d items exported.", owner[0], len(items)), nil,
		render.Button{Label: "Back to the list", Token: action.Trigger(action.ModeSearch, "equipment")})
	r.File = ref
	return r.With(e.menuButtons()...)
}

func (e *Engine) onExportMenu(_ context.Context, sess *store.Session, _ action.Action) *render.Render {
	if e.exporter == nil {
		return e.clarify(sess, "Export is not available.")
	}

	r := render.Prompt("Which records should be exported?")
	for _, m := range exportModes {
		r.With(render.Button{Label: m.label, Token: action.Select(action.ModeExport, "records", m.arg)})
	}
	return r
}

func (e *Engine) onExportRecords(ctx context.Context, sess *store.Session, a action.Action) *render.Render {
	if e.exporter == nil {
		return e.clarify(sess, "Export is not available.")
	}

	mode, ok := "", false
	for _, m := range exportModes {
		if m.arg == a.Arg {
			ok = true
			if m.arg != "all" {
				mode = m.arg
			}
		}
	}
	if !ok {
		return e.clarify(sess, "This button is not valid any more.")
	}

	dbID := e.router.Active(ctx, sess.UserID)
	ref, n, err := e.exporter.ExportRecords(ctx, dbID, mode)
	if err != nil {
		return e.failure(sess, "export", err)
	}

	e.logger.Info("CONVERSATION", "Records exported", map[string]interface{}{
		"user_id":     sess.UserID,
		"database_id": dbID,
		"mode":        mode,
		"records":     n,
	})

	r := render.Result(fmt.Sprintf("Exported %d records from %s.", n, dbID), nil, e.menuButtons()...)
	r.File = ref
	return r
}

func nonEmpty(values ...string) []string {
	out := values[:0]
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
