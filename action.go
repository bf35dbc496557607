package bstable

import (
	"context"
	"strconv"

	"github.com/google/safehtml"
	"github.com/google/safehtml/template"
)

// ActionClassPrefix is the prefix of the CSS class
// that binds the click handler of a row action.
const ActionClassPrefix = "action-"

// ActionClickClass returns the CSS class binding the click
// handler of the action at actionIndex within its column.
func ActionClickClass(actionIndex int) string {
	return ActionClassPrefix + strconv.Itoa(actionIndex)
}

// ActionFunc is called when a row action was clicked.
// index is the row index within the current page
// and actionIndex the position of the action within its column.
type ActionFunc func(ctx context.Context, index int, row Row, actionIndex int) error

// ActionRenderFunc renders the markup of a dynamic action.
// The markup must carry clickClass for the click handler to be bound.
type ActionRenderFunc func(ctx context.Context, row Row, index, actionIndex int, clickClass string) (safehtml.HTML, error)

// Action is a row action of a column.
// It is either static with Icon and Title
// or dynamic with a Render function.
type Action struct {
	// Icon is the CSS class of the icon of a static action.
	Icon string
	// Title is the tooltip of a static action.
	Title string
	// Render renders a dynamic action.
	Render ActionRenderFunc
	// OnClick is optional.
	OnClick ActionFunc
}

// DynamicAction is passed to Column.AddDynamicAction.
type DynamicAction struct {
	Render  ActionRenderFunc
	OnClick ActionFunc
}

// IsDynamic returns true if the action is rendered by a Render function.
func (a *Action) IsDynamic() bool {
	return a.Render != nil
}

// RenderHTML renders the action for a row.
func (a *Action) RenderHTML(ctx context.Context, row Row, index, actionIndex int) (safehtml.HTML, error) {
	clickClass := ActionClickClass(actionIndex)
	if a.IsDynamic() {
		return a.Render(ctx, row, index, actionIndex, clickClass)
	}
	return TableActionHTML(clickClass, a.Title, a.Icon)
}

var (
	tableActionTemplate = template.Must(template.New("action").Parse(
		`<a class="result-action {{.EventClass}}" href="#" title="{{.Title}}" data-toggle="tooltip">` +
			`<i class="{{.Icon}}"></i>` +
			`</a>`,
	))

	actionsListTemplate = template.Must(template.New("actions").Parse(
		`<div class="actions-list">{{.}}</div>`,
	))
)

// TableActionHTML renders the markup of a static row action
// with the click binding class eventClass, a tooltip title
// and an icon CSS class.
// Useful for ActionRenderFunc implementations that
// only want to vary icon or title per row.
func TableActionHTML(eventClass, title, icon string) (safehtml.HTML, error) {
	return tableActionTemplate.ExecuteToHTML(struct {
		EventClass string
		Title      string
		Icon       string
	}{
		EventClass: eventClass,
		Title:      title,
		Icon:       icon,
	})
}

// actionsFormatter returns the CellFormatter rendering all actions
// of a column in registration order.
func actionsFormatter(actions []Action) CellFormatter {
	return CellFormatterFunc(func(ctx context.Context, cell *Cell) (str string, raw bool, err error) {
		rendered := make([]safehtml.HTML, len(actions))
		for i := range actions {
			rendered[i], err = actions[i].RenderHTML(ctx, cell.Row, cell.Index, i)
			if err != nil {
				return "", false, err
			}
		}
		html, err := actionsListTemplate.ExecuteToHTML(safehtml.HTMLConcat(rendered...))
		if err != nil {
			return "", false, err
		}
		return html.String(), true, nil
	})
}
