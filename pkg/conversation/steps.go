package conversation

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"itinvent-bot/pkg/action"
	"itinvent-bot/pkg/inventory"
	"itinvent-bot/pkg/location"
	"itinvent-bot/pkg/picker"
	"itinvent-bot/pkg/render"
	"itinvent-bot/pkg/store"
	"itinvent-bot/pkg/suggest"
)

// Field sources recorded next to every collected value.
const (
	sourceInput     = "input"
	sourceList      = "list"
	sourceChoice    = "choice"
	sourceBackend   = "backend"
	sourceManual    = "manual"
	sourceSkipped   = "skipped"
	sourceUnresolve = "none"
)

// advance enters the first applicable step without a value, or the confirmation when all are filled.
func (e *Engine) advance(ctx context.Context, sess *store.Session) *render.Render {
	flow := e.flow(sess)
	for _, step := range flow.applicable(sess) {
		if !filled(sess, step) {
			return e.enter(ctx, sess, flow, step)
		}
	}
	return e.enterConfirm(sess)
}

// enter moves the session into step. Lists are loaded before the state changes,
// so a failed lookup leaves the session where it was.
func (e *Engine) enter(ctx context.Context, sess *store.Session, flow *Flow, step Step) *render.Render {
	mode := flow.Mode

	switch step.Kind {
	case StepBranch:
		if err := e.locations.Begin(ctx, sess, mode, location.LevelBranch, ""); err != nil {
			return e.failure(sess, "inventory", err)
		}
	case StepLocation:
		if err := e.locations.Begin(ctx, sess, mode, location.LevelLocation, sess.Field("branch")); err != nil {
			return e.failure(sess, "inventory", err)
		}
	case StepList:
		items, err := e.universe(ctx, sess, step)
		if err != nil {
			return e.failure(sess, "inventory", err)
		}
		picker.Load(sess, mode, step.Name, items)
	}

	sess.State = store.StepState(mode, step.Name)
	sess.AwaitingManual = ""
	return e.renderStep(sess, flow, step)
}

// renderStep shows the current step without changing the session.
func (e *Engine) renderStep(sess *store.Session, flow *Flow, step Step) *render.Render {
	m := string(flow.Mode)
	var extra []render.Button
	if step.Optional {
		extra = append(extra, render.Button{Label: "Skip", Token: action.Trigger(m, "skip")})
	}
	extra = append(extra, e.cancelButton(flow.Mode))

	switch step.Kind {
	case StepPhotos:
		r := render.Prompt(step.Prompt)
		if len(sess.Items) > 0 {
			r.With(render.Button{Label: "Done", Token: action.Trigger(m, "done")})
		}
		return r.With(extra...)

	case StepBranch:
		return e.locations.RenderPage(sess, flow.Mode, location.LevelBranch, extra...)

	case StepLocation:
		return e.locations.RenderPage(sess, flow.Mode, location.LevelLocation, extra...)

	case StepList:
		return picker.Page(sess, flow.Mode, step.Name, picker.Options{
			Title:       step.Prompt,
			PageSize:    e.opts.ListPageSize,
			AllowManual: true,
			Extra:       extra,
		})

	case StepChoice:
		r := render.Prompt(step.Prompt)
		for _, c := range step.Choices {
			r.With(render.Button{Label: c.Label, Token: action.Select(m, step.Name, c.Key)})
		}
		return r.With(extra...)
	}

	return render.Prompt(step.Prompt, extra...)
}

func (e *Engine) universe(ctx context.Context, sess *store.Session, step Step) ([]string, error) {
	b, err := e.router.Backend(ctx, sess.DatabaseID)
	if err != nil {
		return nil, err
	}
	return step.Universe(ctx, b)
}

func (e *Engine) validate(step Step, value string) (string, error) {
	if step.Validate == nil {
		return e.validator.Name(value)
	}
	return step.Validate(value)
}

// complete stores the value of step, runs its hook and moves on.
func (e *Engine) complete(ctx context.Context, sess *store.Session, step Step, value string, verified bool, source string) *render.Render {
	sess.SetField(step.Name, value, verified, source)
	sess.AwaitingManual = ""

	if step.Kind == StepBranch {
		delete(sess.Fields, "location")
	}

	if step.After != nil {
		b, err := e.router.Backend(ctx, sess.DatabaseID)
		if err != nil {
			e.logger.Warn("CONVERSATION", "Step hook skipped, backend unavailable", map[string]interface{}{
				"user_id": sess.UserID,
				"step":    step.Name,
				"error":   err.Error(),
			})
		}
		step.After(ctx, sess, b)
	}

	return e.advance(ctx, sess)
}

func (e *Engine) currentStep(sess *store.Session) (*Flow, Step, bool) {
	flow := e.flow(sess)
	step, _, ok := flow.current(sess)
	return flow, step, ok
}

func (e *Engine) textInput(ctx context.Context, sess *store.Session, text string) *render.Render {
	if sess.State == store.ConfirmState(sess.Mode) {
		return e.clarify(sess, "Use the buttons to confirm, edit or cancel.")
	}
	flow, step, ok := e.currentStep(sess)
	if !ok {
		return e.clarify(sess, "Unexpected message.")
	}
	if text == "" {
		return e.clarify(sess, "Empty message.")
	}

	if sess.AwaitingManual == step.Name {
		value, err := e.validate(step, text)
		if err != nil {
			return e.clarify(sess, userMessage(err))
		}
		return e.complete(ctx, sess, step, value, false, sourceManual)
	}

	switch step.Kind {
	case StepPhotos:
		return e.addItem(ctx, sess, flow, step, text)

	case StepSerial:
		return e.serialInput(ctx, sess, flow, step, text)

	case StepText:
		value, err := e.validate(step, text)
		if err != nil {
			return e.clarify(sess, userMessage(err))
		}
		return e.complete(ctx, sess, step, value, true, sourceInput)

	case StepSuggest:
		return e.suggestInput(ctx, sess, flow, step, text)

	case StepBranch, StepLocation:
		level := location.LevelBranch
		if step.Kind == StepLocation {
			level = location.LevelLocation
		}
		n := e.locations.Filter(sess, flow.Mode, level, text)
		r := e.renderStep(sess, flow, step)
		if n == 0 {
			r.Text = fmt.Sprintf("Nothing similar to %q. Choose from the list or enter it manually.", text)
		} else {
			r.Text = fmt.Sprintf("Matches for %q", text)
		}
		return r

	case StepList:
		matches := e.suggester.Suggest(text, picker.Universe(sess, flow.Mode, step.Name), 0)
		if len(matches) == 0 {
			r := e.renderStep(sess, flow, step)
			r.Text = fmt.Sprintf("Nothing similar to %q. Choose from the list or enter it manually.", text)
			return r
		}
		picker.Narrow(sess, flow.Mode, step.Name, suggest.Names(matches))
		return e.renderStep(sess, flow, step)

	case StepChoice:
		for _, c := range step.Choices {
			if strings.EqualFold(text, c.Key) || strings.EqualFold(text, c.Label) {
				return e.complete(ctx, sess, step, c.Key, true, sourceChoice)
			}
		}
		r := e.renderStep(sess, flow, step)
		r.Kind = render.KindClarify
		r.Text = "Choose one of the options below."
		return r
	}

	return e.clarify(sess, "Unexpected message.")
}

func (e *Engine) photoInput(ctx context.Context, sess *store.Session, photo []byte) *render.Render {
	_, step, ok := e.currentStep(sess)
	if !ok || (step.Kind != StepPhotos && step.Kind != StepSerial) {
		return e.clarify(sess, "A photo is not expected at this step.")
	}

	serial, r := e.recognize(ctx, sess, photo)
	if r != nil {
		return r
	}
	return e.textInput(ctx, sess, serial)
}

// recognize returns the serial read from photo, or the render to show when nothing could be read.
func (e *Engine) recognize(ctx context.Context, sess *store.Session, photo []byte) (string, *render.Render) {
	if e.recognizer == nil {
		return "", e.clarify(sess, "Photo recognition is not available. Type the serial number instead.")
	}
	if len(photo) == 0 {
		return "", e.clarify(sess, "The photo is empty.")
	}

	serial, err := e.recognizer.RecognizeSerial(ctx, photo)
	if err != nil {
		e.observer.ObserveCollaboratorFailure("recognition")
		e.logger.Warn("CONVERSATION", "Serial recognition failed", map[string]interface{}{
			"user_id": sess.UserID,
			"error":   err.Error(),
		})
		return "", render.Failure("Could not read a serial number from the photo. Send a sharper photo or type the serial number.", true)
	}

	return serial, nil
}

// lookup finds equipment by serial. Backends try the common misreadings of the serial themselves.
func (e *Engine) lookup(ctx context.Context, b inventory.Backend, serial string) (*store.Equipment, error) {
	return b.FindBySerial(ctx, serial)
}

func (e *Engine) cleanSerial(text string) (string, error) {
	return e.validator.Serial(inventory.CleanSerial(text))
}

func (e *Engine) serialInput(ctx context.Context, sess *store.Session, flow *Flow, step Step, text string) *render.Render {
	serial, err := e.cleanSerial(text)
	if err != nil {
		return e.clarify(sess, userMessage(err))
	}

	b, err := e.router.Backend(ctx, sess.DatabaseID)
	if err != nil {
		return e.failure(sess, "inventory", err)
	}
	eq, err := e.lookup(ctx, b, serial)
	if err != nil {
		return e.failure(sess, "inventory", err)
	}

	if step.Serial == SerialExisting {
		if eq == nil {
			return render.Prompt(
				fmt.Sprintf("Serial number %s was not found in %s. Check it and send it again.", serial, sess.DatabaseID),
				unfoundButton(serial),
				e.cancelButton(flow.Mode),
			)
		}
		sess.Items = []store.Equipment{*eq}
		return e.complete(ctx, sess, step, eq.Serial, true, sourceBackend)
	}

	if eq != nil {
		return e.clarify(sess, fmt.Sprintf("Serial number %s is already registered: %s.", eq.Serial, describe(eq)))
	}
	recorded, err := e.router.SerialRecorded(ctx, sess.DatabaseID, string(flow.Mode), serial)
	if err != nil {
		return e.failure(sess, "records", err)
	}
	if recorded {
		return e.clarify(sess, fmt.Sprintf("Serial number %s has already been reported as unfound.", serial))
	}

	return e.complete(ctx, sess, step, serial, true, sourceInput)
}

func (e *Engine) addItem(ctx context.Context, sess *store.Session, flow *Flow, step Step, text string) *render.Render {
	serial, err := e.cleanSerial(text)
	if err != nil {
		return e.clarify(sess, userMessage(err))
	}
	if len(sess.Items) >= e.opts.MaxItems {
		return e.clarify(sess, fmt.Sprintf("A transfer holds at most %d items. Press Done to continue.", e.opts.MaxItems))
	}

	b, err := e.router.Backend(ctx, sess.DatabaseID)
	if err != nil {
		return e.failure(sess, "inventory", err)
	}
	eq, err := e.lookup(ctx, b, serial)
	if err != nil {
		return e.failure(sess, "inventory", err)
	}

	m := string(flow.Mode)
	done := render.Button{Label: "Done", Token: action.Trigger(m, "done")}

	if eq == nil {
		r := render.Prompt(fmt.Sprintf("Serial number %s was not found in %s.", serial, sess.DatabaseID), unfoundButton(serial))
		if len(sess.Items) > 0 {
			r.With(done)
		}
		return r.With(e.cancelButton(flow.Mode))
	}

	for _, item := range sess.Items {
		if item.Serial == eq.Serial {
			return render.Clarify(fmt.Sprintf("%s is already in the list.", eq.Serial), done, e.cancelButton(flow.Mode))
		}
	}

	sess.Items = append(sess.Items, *eq)
	return render.Prompt(
		fmt.Sprintf("Added %s: %s. Items in the list: %d. Send the next one or press Done.", eq.Serial, describe(eq), len(sess.Items)),
		done,
		e.cancelButton(flow.Mode),
	)
}

func (e *Engine) suggestInput(ctx context.Context, sess *store.Session, flow *Flow, step Step, text string) *render.Render {
	value, err := e.validate(step, text)
	if err != nil {
		return e.clarify(sess, userMessage(err))
	}

	all, err := e.universe(ctx, sess, step)
	if err != nil {
		return e.failure(sess, "inventory", err)
	}
	picker.Load(sess, flow.Mode, step.Name, all)

	matches := e.suggester.Suggest(value, all, 0)
	if len(matches) == 1 && suggest.Normalize(matches[0].Candidate) == suggest.Normalize(value) {
		return e.complete(ctx, sess, step, matches[0].Candidate, true, sourceList)
	}

	m := string(flow.Mode)
	if len(matches) == 0 {
		picker.Narrow(sess, flow.Mode, step.Name, nil)
		return render.Prompt(
			fmt.Sprintf("Nothing similar to %q was found. Type it again or enter it manually.", value),
			render.Button{Label: "Enter manually", Token: action.Select(m, step.Name, picker.Manual)},
			e.cancelButton(flow.Mode),
		)
	}

	picker.Narrow(sess, flow.Mode, step.Name, suggest.Names(matches))
	return picker.Page(sess, flow.Mode, step.Name, picker.Options{
		Title:       fmt.Sprintf("%s: choose a match for %q", step.Label, value),
		PageSize:    e.opts.ListPageSize,
		AllowManual: true,
		Extra:       []render.Button{e.cancelButton(flow.Mode)},
	})
}

// onStep handles select and navigate buttons of the current step.
func (e *Engine) onStep(ctx context.Context, sess *store.Session, a action.Action) *render.Render {
	flow, step, ok := e.currentStep(sess)
	if !ok || step.Name != a.Feature {
		return e.clarify(sess, "This button belongs to another step.")
	}

	switch a.Op {
	case action.OpNavigate:
		switch step.Kind {
		case StepBranch:
			e.locations.Navigate(sess, flow.Mode, location.LevelBranch, a.Dir)
		case StepLocation:
			e.locations.Navigate(sess, flow.Mode, location.LevelLocation, a.Dir)
		case StepSuggest, StepList:
			picker.Navigate(sess, flow.Mode, step.Name, e.opts.ListPageSize, a.Dir)
		default:
			return e.clarify(sess, "This step has no list.")
		}
		if step.Kind == StepSuggest {
			return picker.Page(sess, flow.Mode, step.Name, picker.Options{
				Title:       step.Label,
				PageSize:    e.opts.ListPageSize,
				AllowManual: true,
				Extra:       []render.Button{e.cancelButton(flow.Mode)},
			})
		}
		return e.renderStep(sess, flow, step)

	case action.OpSelect:
		switch step.Kind {
		case StepChoice:
			c, found := step.choice(a.Arg)
			if !found {
				return e.clarify(sess, "Unknown option.")
			}
			return e.complete(ctx, sess, step, c.Key, true, sourceChoice)

		case StepBranch, StepLocation, StepSuggest, StepList:
			sel, err := picker.Select(sess, flow.Mode, step.Name, a.Arg)
			if err != nil {
				return e.clarify(sess, "This option is no longer in the list.")
			}
			if sel.Manual {
				sess.AwaitingManual = step.Name
				return render.Prompt(fmt.Sprintf("Type the %s.", strings.ToLower(step.Label)), e.cancelButton(flow.Mode))
			}
			return e.complete(ctx, sess, step, sel.Value, true, sourceList)
		}
		return e.clarify(sess, "Type the answer instead.")
	}

	// A plain trigger shows the step again with any filter removed.
	switch step.Kind {
	case StepBranch:
		e.locations.Reset(sess, flow.Mode, location.LevelBranch)
	case StepLocation:
		e.locations.Reset(sess, flow.Mode, location.LevelLocation)
	case StepList:
		picker.Narrow(sess, flow.Mode, step.Name, picker.Universe(sess, flow.Mode, step.Name))
	}
	sess.AwaitingManual = ""
	return e.renderStep(sess, flow, step)
}

func (e *Engine) onSkip(ctx context.Context, sess *store.Session, _ action.Action) *render.Render {
	_, step, ok := e.currentStep(sess)
	if !ok || !step.Optional {
		return e.clarify(sess, "This step cannot be skipped.")
	}
	return e.complete(ctx, sess, step, "", false, sourceSkipped)
}

func (e *Engine) onDone(ctx context.Context, sess *store.Session, _ action.Action) *render.Render {
	_, step, ok := e.currentStep(sess)
	if !ok || step.Kind != StepPhotos {
		return e.clarify(sess, "Nothing to finish at this step.")
	}
	if len(sess.Items) == 0 {
		return e.clarify(sess, "Add at least one item first.")
	}
	return e.advance(ctx, sess)
}

// onRetry repeats whatever failed: loading the next step or showing the current one.
func (e *Engine) onRetry(ctx context.Context, sess *store.Session, _ action.Action) *render.Render {
	if sess.State == store.ConfirmState(sess.Mode) {
		return e.renderConfirm(sess)
	}
	flow, step, ok := e.currentStep(sess)
	if !ok || filled(sess, step) {
		return e.advance(ctx, sess)
	}
	return e.enter(ctx, sess, flow, step)
}

// onEdit re-opens one step from the confirmation summary.
func (e *Engine) onEdit(ctx context.Context, sess *store.Session, a action.Action) *render.Render {
	if sess.State != store.ConfirmState(sess.Mode) {
		return e.clarify(sess, "Editing is available from the summary only.")
	}
	flow := e.flow(sess)
	step, ok := flow.step(a.Arg)
	if !ok || !step.applies(sess) {
		return e.clarify(sess, "This field cannot be edited.")
	}

	prev := sess.Fields[step.Name]
	if step.Kind != StepPhotos {
		delete(sess.Fields, step.Name)
	}
	r := e.enter(ctx, sess, flow, step)
	if r.Kind == render.KindError {
		if step.Kind != StepPhotos {
			sess.Fields[step.Name] = prev
		}
		return r
	}
	sess.Editing = step.Name
	return r
}

func (e *Engine) resolveDepartment(ctx context.Context, sess *store.Session, b inventory.Backend) {
	name := sess.Field("employee")
	if b == nil || name == "" {
		sess.SetField("department", "", false, sourceUnresolve)
		return
	}

	res, err := suggest.Resolve(ctx,
		suggest.Layer{Name: "exact", Lookup: func(ctx context.Context) (string, error) {
			return b.OwnerDepartment(ctx, name, true)
		}},
		suggest.Layer{Name: "fuzzy", Lookup: func(ctx context.Context) (string, error) {
			employees := picker.Universe(sess, sess.Mode, "employee")
			if len(employees) == 0 {
				var err error
				if employees, err = b.Employees(ctx); err != nil {
					return "", err
				}
			}
			matches := e.suggester.Suggest(name, employees, 1)
			if len(matches) == 0 {
				return "", nil
			}
			return b.OwnerDepartment(ctx, matches[0].Candidate, true)
		}},
		suggest.Layer{Name: "equipment", Lookup: func(ctx context.Context) (string, error) {
			items, err := b.FindByEmployee(ctx, name, false)
			if err != nil {
				return "", err
			}
			return commonDepartment(items), nil
		}},
	)
	if err != nil {
		e.logger.Info("CONVERSATION", "Department not resolved", map[string]interface{}{
			"user_id":  sess.UserID,
			"employee": name,
			"error":    err.Error(),
		})
		sess.SetField("department", "", false, sourceUnresolve)
		return
	}

	sess.SetField("department", res.Value, res.Layer == "exact", res.Layer)
}

// commonDepartment returns the department most of items are registered under, ties going to the first alphabetically.
func commonDepartment(items []store.Equipment) string {
	counts := make(map[string]int)
	for _, it := range items {
		if d := strings.TrimSpace(it.Department); d != "" {
			counts[d]++
		}
	}
	names := make([]string, 0, len(counts))
	for d := range counts {
		names = append(names, d)
	}
	sort.Slice(names, func(i, j int) bool {
		if counts[names[i]] != counts[names[j]] {
			return counts[names[i]] > counts[names[j]]
		}
		return names[i] < names[j]
	})
	if len(names) == 0 {
		return ""
	}
	return names[0]
}

func unfoundButton(serial string) render.Button {
	return render.Button{Label: "Register as unfound", Token: action.Select(action.ModeUnfound, "start", serial)}
}

func describe(eq *store.Equipment) string {
	parts := make([]string, 0, 3)
	for _, p := range []string{eq.Type, eq.Model, eq.Employee} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		return "no details"
	}
	return strings.Join(parts, ", ")
}
