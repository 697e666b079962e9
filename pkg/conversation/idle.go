package conversation

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"itinvent-bot/pkg/action"
	"itinvent-bot/pkg/inventory"
	"itinvent-bot/pkg/render"
	"itinvent-bot/pkg/store"
)

const helpText = "Send a serial number or a photo of its label to look equipment up, or choose a workflow below. " +
	"/employee NAME lists the equipment of an employee, /export writes records to a spreadsheet. " +
	"/cancel stops the current workflow, /db switches the database."

func (e *Engine) command(ctx context.Context, sess *store.Session, text string) *render.Render {
	words := strings.Fields(text)
	name, _, _ := strings.Cut(words[0], "@")
	rest := strings.Join(words[1:], " ")

	switch strings.ToLower(name) {
	case "/start", "/menu":
		return e.menu(ctx, sess)
	case "/help":
		return render.Prompt(helpText, e.menuButtons()...)
	case "/cancel":
		return e.cancel(sess)
	case "/transfer":
		return e.start(ctx, sess, store.ModeTransfer, "")
	case "/work":
		return e.start(ctx, sess, store.ModeWork, "")
	case "/unfound":
		return e.start(ctx, sess, store.ModeUnfound, "")
	case "/db":
		return e.onDatabaseMenu(ctx, sess, action.Action{})
	case "/employee":
		if sess.Active() {
			return e.clarify(sess, busyWorkflowText)
		}
		if rest != "" {
			return e.employeeQuery(ctx, sess, rest)
		}
		return e.onEmployeeSearch(ctx, sess, action.Action{Op: action.OpTrigger})
	case "/export":
		if sess.Active() {
			return e.clarify(sess, busyWorkflowText)
		}
		return e.onExportMenu(ctx, sess, action.Action{})
	case "/done":
		if !sess.Active() {
			return e.clarify(sess, "Nothing to finish.")
		}
		return e.onDone(ctx, sess, action.Action{})
	case "/skip":
		if !sess.Active() {
			return e.clarify(sess, "Nothing to skip.")
		}
		return e.onSkip(ctx, sess, action.Action{})
	}

	return e.clarify(sess, fmt.Sprintf("Unknown command %s. Send /help for the list of commands.", name))
}

func (e *Engine) menu(ctx context.Context, sess *store.Session) *render.Render {
	text := fmt.Sprintf("Active database: %s. Choose a workflow or send a serial number.", e.router.Active(ctx, sess.UserID))
	if sess.Active() {
		text = fmt.Sprintf("A %s workflow is in progress. Continue it, or choose another workflow to discard it.",
			strings.ToLower(e.flow(sess).Title))
	}
	return render.Prompt(text, e.menuButtons()...)
}

// search looks a serial number up in the active database outside of any workflow.
func (e *Engine) search(ctx context.Context, sess *store.Session, text string) *render.Render {
	serial, err := e.cleanSerial(text)
	if err != nil {
		return e.clarify(sess, "Send a serial number to look it up, or choose a workflow.")
	}

	return e.showSerial(ctx, sess, serial)
}

// showSerial renders the equipment card of serial in the active database.
func (e *Engine) showSerial(ctx context.Context, sess *store.Session, serial string) *render.Render {
	dbID := e.router.Active(ctx, sess.UserID)
	b, err := e.router.Backend(ctx, dbID)
	if err != nil {
		return e.failure(sess, "inventory", err)
	}
	eq, err := e.lookup(ctx, b, serial)
	if err != nil {
		return e.failure(sess, "inventory", err)
	}

	if eq == nil {
		return render.Prompt(fmt.Sprintf("Serial number %s was not found in %s.", serial, dbID),
			append([]render.Button{unfoundButton(serial)}, e.menuButtons()...)...)
	}

	lines := []render.Line{
		{Label: "Serial", Value: eq.Serial},
		{Label: "Hardware serial", Value: eq.HwSerial},
		{Label: "Inventory number", Value: eq.InventoryNo},
		{Label: "Type", Value: eq.Type},
		{Label: "Model", Value: eq.Model},
		{Label: "Manufacturer", Value: eq.Manufacturer},
		{Label: "Employee", Value: eq.Employee},
		{Label: "Department", Value: eq.Department},
		{Label: "Branch", Value: eq.Branch},
		{Label: "Location", Value: eq.Location},
		{Label: "Status", Value: eq.Status},
		{Label: "Description", Value: eq.Description},
	}
	shown := lines[:0]
	for _, l := range lines {
		if l.Value != "" {
			shown = append(shown, l)
		}
	}

	return render.Result(fmt.Sprintf("Found in %s", dbID), shown, e.menuButtons()...)
}

func (e *Engine) searchPhoto(ctx context.Context, sess *store.Session, photo []byte) *render.Render {
	serial, r := e.recognize(ctx, sess, photo)
	if r != nil {
		return r
	}
	return e.search(ctx, sess, serial)
}

func (e *Engine) onDatabaseMenu(ctx context.Context, sess *store.Session, _ action.Action) *render.Render {
	active := e.router.Active(ctx, sess.UserID)

	r := render.Prompt(fmt.Sprintf("Active database: %s. Choose another one:", active))
	for _, db := range e.router.Databases() {
		label := db.Name
		if db.ID == active {
			label += " ✓"
		}
		r.With(render.Button{Label: label, Token: action.Select(action.ModeDatabase, "select", db.ID)})
	}
	return r
}

func (e *Engine) onDatabaseSelect(ctx context.Context, sess *store.Session, a action.Action) *render.Render {
	if a.Op != action.OpSelect {
		return e.onDatabaseMenu(ctx, sess, a)
	}
	if sess.Active() {
		return e.clarify(sess, "Finish or cancel the current workflow before switching the database.")
	}

	if err := e.router.Select(ctx, sess.UserID, a.Arg); err != nil {
		if errors.Is(err, inventory.ErrInvalidDatabase) {
			return e.clarify(sess, "This database is not available.")
		}
		return e.failure(sess, "selections", err)
	}

	e.logger.Info("CONVERSATION", "Database selected", map[string]interface{}{
		"user_id":     sess.UserID,
		"database_id": a.Arg,
	})
	return render.Prompt(fmt.Sprintf("Active database: %s.", a.Arg), e.menuButtons()...)
}
