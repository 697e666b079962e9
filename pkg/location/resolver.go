// Package location drives the two-level branch then location selection shared by every workflow.
package location

import (
	"context"

	"itinvent-bot/pkg/action"
	"itinvent-bot/pkg/picker"
	"itinvent-bot/pkg/render"
	"itinvent-bot/pkg/store"
	"itinvent-bot/pkg/suggest"
)

type Level string

const (
	LevelBranch   Level = "branch"
	LevelLocation Level = "location"
)

// DefaultPageSize matches the keyboard height used by the chat client.
const DefaultPageSize = 8

// Directory lists branches and locations of a database.
type Directory interface {
	Branches(ctx context.Context, databaseID string) ([]string, error)
	Locations(ctx context.Context, databaseID, branch string) ([]string, error)
}

type Resolver struct {
	dir       Directory
	suggester *suggest.Suggester
	pageSize  int
}

func NewResolver(dir Directory, suggester *suggest.Suggester, pageSize int) *Resolver {
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	return &Resolver{dir: dir, suggester: suggester, pageSize: pageSize}
}

func (r *Resolver) PageSize() int {
	return r.pageSize
}

func (r *Resolver) ListBranches(ctx context.Context, databaseID string) ([]string, error) {
	return r.dir.Branches(ctx, databaseID)
}

func (r *Resolver) ListLocations(ctx context.Context, databaseID, branch string) ([]string, error) {
	return r.dir.Locations(ctx, databaseID, branch)
}

// Begin loads the candidate list of level into the slice of mode. Locations are scoped to branch.
func (r *Resolver) Begin(ctx context.Context, sess *store.Session, mode store.Mode, level Level, branch string) error {
	var (
		items []string
		err   error
	)
	switch level {
	case LevelBranch:
		items, err = r.ListBranches(ctx, sess.DatabaseID)
	default:
		items, err = r.ListLocations(ctx, sess.DatabaseID, branch)
	}
	if err != nil {
		return err
	}

	picker.Load(sess, mode, string(level), items)
	return nil
}

// Filter narrows the visible list to entries resembling text and reports how many remain.
// Nothing is narrowed when no entry matches.
func (r *Resolver) Filter(sess *store.Session, mode store.Mode, level Level, text string) int {
	all := picker.Universe(sess, mode, string(level))
	matches := r.suggester.Suggest(text, all, 0)
	if len(matches) == 0 {
		return 0
	}
	picker.Narrow(sess, mode, string(level), suggest.Names(matches))
	return len(matches)
}

// Reset shows the full list again.
func (r *Resolver) Reset(sess *store.Session, mode store.Mode, level Level) {
	picker.Narrow(sess, mode, string(level), picker.Universe(sess, mode, string(level)))
}

func (r *Resolver) Navigate(sess *store.Session, mode store.Mode, level Level, dir action.Direction) {
	picker.Navigate(sess, mode, string(level), r.pageSize, dir)
}

// Select resolves an index or the manual-entry sentinel.
func (r *Resolver) Select(sess *store.Session, mode store.Mode, level Level, arg string) (picker.Selection, error) {
	return picker.Select(sess, mode, string(level), arg)
}

// RenderPage renders the current page of level with the same layout for every mode.
func (r *Resolver) RenderPage(sess *store.Session, mode store.Mode, level Level, extra ...render.Button) *render.Render {
	title := "Choose a branch"
	empty := "No branches found. Enter the branch manually."
	if level == LevelLocation {
		title = "Choose a location"
		empty = "No locations found for this branch. Enter the location manually."
	}
	if len(picker.Items(sess, mode, string(level))) == 0 {
		title = empty
	}

	return picker.Page(sess, mode, string(level), picker.Options{
		Title:       title,
		PageSize:    r.pageSize,
		AllowManual: true,
		Extra:       extra,
	})
}
