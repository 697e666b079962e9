// Package picker keeps paged candidate lists inside a session, one cursor per mode and feature.
package picker

import (
	"errors"
	"fmt"
	"strconv"

	"itinvent-bot/pkg/action"
	"itinvent-bot/pkg/pagination"
	"itinvent-bot/pkg/render"
	"itinvent-bot/pkg/store"
)

// Manual is the select argument that switches a step to typed input.
const Manual = "manual"

var ErrOutOfRange = errors.New("selection is not in the current list")

type Selection struct {
	Value  string
	Index  int
	Manual bool
}

// Options controls how a page is rendered.
type Options struct {
	Title       string
	PageSize    int
	AllowManual bool
	ManualLabel string
	Extra       []render.Button
}

// Load replaces both the full list and the visible candidates for feature and rewinds the cursor.
func Load(sess *store.Session, mode store.Mode, feature string, items []string) {
	sl := sess.Slice(mode)
	sl.Universe[feature] = items
	sl.Lists[feature] = items
	sl.Cursors[feature] = 0
}

// Narrow shows a subset of the loaded list without forgetting the full one.
func Narrow(sess *store.Session, mode store.Mode, feature string, items []string) {
	sl := sess.Slice(mode)
	sl.Lists[feature] = items
	sl.Cursors[feature] = 0
}

// Universe returns the full list last passed to Load.
func Universe(sess *store.Session, mode store.Mode, feature string) []string {
	return sess.Slice(mode).Universe[feature]
}

// Items returns the candidates currently shown for feature.
func Items(sess *store.Session, mode store.Mode, feature string) []string {
	return sess.Slice(mode).Lists[feature]
}

func Cursor(sess *store.Session, mode store.Mode, feature string) int {
	return sess.Slice(mode).Cursors[feature]
}

// Navigate moves the cursor of feature one page in dir. Only the slice of mode is touched.
func Navigate(sess *store.Session, mode store.Mode, feature string, pageSize int, dir action.Direction) {
	sl := sess.Slice(mode)
	total := len(sl.Lists[feature])
	offset := sl.Cursors[feature]

	switch dir {
	case action.Next:
		sl.Cursors[feature] = pagination.Next(offset, pageSize, total)
	case action.Prev:
		sl.Cursors[feature] = pagination.Prev(offset, pageSize)
	}
}

// Select resolves a select argument: an absolute index into the current list or Manual.
func Select(sess *store.Session, mode store.Mode, feature, arg string) (Selection, error) {
	if arg == Manual {
		return Selection{Index: -1, Manual: true}, nil
	}

	idx, err := strconv.Atoi(arg)
	if err != nil {
		return Selection{}, fmt.Errorf("%w: %q", ErrOutOfRange, arg)
	}

	items := sess.Slice(mode).Lists[feature]
	if idx < 0 || idx >= len(items) {
		return Selection{}, fmt.Errorf("%w: %d of %d", ErrOutOfRange, idx, len(items))
	}

	return Selection{Value: items[idx], Index: idx}, nil
}

// Page renders the visible window of feature with select, navigation and optional manual-entry buttons.
func Page(sess *store.Session, mode store.Mode, feature string, opts Options) *render.Render {
	sl := sess.Slice(mode)
	items := sl.Lists[feature]
	offset := pagination.Normalize(sl.Cursors[feature], opts.PageSize, len(items))
	sl.Cursors[feature] = offset

	visible, hasPrev, hasNext := pagination.Window(items, offset, opts.PageSize)

	r := &render.Render{
		Kind:  render.KindList,
		Text:  opts.Title,
		Page:  pagination.Page(offset, opts.PageSize),
		Pages: pagination.Pages(len(items), opts.PageSize),
	}
	if len(items) == 0 {
		r.Kind = render.KindPrompt
		r.Page = 0
	}

	m := string(mode)
	for i, item := range visible {
		r.Buttons = append(r.Buttons, render.Button{
			Label: item,
			Token: action.Select(m, feature, strconv.Itoa(offset+i)),
		})
	}
	if hasPrev {
		r.Navigation = append(r.Navigation, render.Button{Label: "« Back", Token: action.Navigate(m, feature, action.Prev)})
	}
	if hasNext {
		r.Navigation = append(r.Navigation, render.Button{Label: "Next »", Token: action.Navigate(m, feature, action.Next)})
	}
	if opts.AllowManual {
		label := opts.ManualLabel
		if label == "" {
			label = "Enter manually"
		}
		r.Buttons = append(r.Buttons, render.Button{Label: label, Token: action.Select(m, feature, Manual)})
	}
	r.Buttons = append(r.Buttons, opts.Extra...)

	return r
}
