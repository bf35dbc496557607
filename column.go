package bstable

import (
	"context"
	"fmt"
	"maps"
	"slices"
)

// Align is the horizontal alignment of a column.
type Align string

const (
	AlignLeft   Align = "left"
	AlignCenter Align = "center"
	AlignRight  Align = "right"
)

// VAlign is the vertical alignment of a column.
type VAlign string

const (
	VAlignTop    VAlign = "top"
	VAlignMiddle VAlign = "middle"
	VAlignBottom VAlign = "bottom"
)

// ColumnSpec is implemented by everything
// that can be resolved to a ColumnConfig.
// Both the Column builder and ColumnConfig implement it.
type ColumnSpec interface {
	ColumnConfig() (ColumnConfig, error)
}

var (
	_ ColumnSpec = new(Column)
	_ ColumnSpec = ColumnConfig{}
)

// ColumnConfig is the plain configuration of one column.
// Function valued fields are not marshalled to JSON.
type ColumnConfig struct {
	Field     string               `json:"field,omitempty"`
	Title     string               `json:"title,omitempty"`
	Align     Align                `json:"align,omitempty"`
	VAlign    VAlign               `json:"valign,omitempty"`
	Checkbox  bool                 `json:"checkbox,omitempty"`
	Width     string               `json:"width,omitempty"`
	Class     string               `json:"class,omitempty"`
	Sortable  *bool                `json:"sortable,omitempty"`
	Formatter CellFormatter        `json:"-"`
	Events    map[string]EventFunc `json:"-"`
}

// ColumnConfig implements ColumnSpec by returning the config itself.
func (c ColumnConfig) ColumnConfig() (ColumnConfig, error) {
	return c, nil
}

// DataField returns the row key of the column at index.
// Columns without field are keyed by their index.
func (c *ColumnConfig) DataField(index int) string {
	if c.Field != "" {
		return c.Field
	}
	return fmt.Sprint(index)
}

// Trigger calls the event handler registered
// for eventType and className.
func (c *ColumnConfig) Trigger(ctx context.Context, className string, event *Event) error {
	handler, ok := c.Events[EventKey(event.Type, className)]
	if !ok {
		return fmt.Errorf("%w for %q in column %q", ErrNoEventHandler, EventKey(event.Type, className), c.Field)
	}
	return handler(ctx, event)
}

// Column accumulates the attributes and row actions of one column.
// Use Build to get the plain ColumnConfig.
type Column struct {
	field     string
	title     string
	align     Align
	valign    VAlign
	checkbox  bool
	width     string
	class     string
	sortable  *bool
	formatter CellFormatter
	events    map[string]EventFunc
	actions   []Action
}

// NewColumn returns a new Column for a field with a title.
func NewColumn(field, title string) *Column {
	return &Column{field: field, title: title}
}

func (c *Column) Field(field string) *Column {
	c.field = field
	return c
}

func (c *Column) Title(title string) *Column {
	c.title = title
	return c
}

func (c *Column) Align(align Align) *Column {
	c.align = align
	return c
}

func (c *Column) VAlign(valign VAlign) *Column {
	c.valign = valign
	return c
}

func (c *Column) Checkbox(checkbox bool) *Column {
	c.checkbox = checkbox
	return c
}

// Width sets the column width like "120" or "20%".
func (c *Column) Width(width string) *Column {
	c.width = width
	return c
}

// Class sets the CSS class of the column cells.
func (c *Column) Class(class string) *Column {
	c.class = class
	return c
}

func (c *Column) Sortable(sortable bool) *Column {
	c.sortable = &sortable
	return c
}

// Formatter sets the formatter of the column cells.
// A column with a formatter can't have actions.
func (c *Column) Formatter(formatter CellFormatter) *Column {
	c.formatter = formatter
	return c
}

func (c *Column) FormatterFunc(formatter CellFormatterFunc) *Column {
	return c.Formatter(formatter)
}

// OnClick registers a handler for click events
// on elements with the CSS class className within
// the cells of the column.
func (c *Column) OnClick(className string, handler EventFunc) *Column {
	if c.events == nil {
		c.events = make(map[string]EventFunc)
	}
	c.events[EventKey("click", className)] = handler
	return c
}

// AddAction appends a static action rendered as icon link.
// If onClick is not nil, it will be bound to the
// click class of the action, see ActionClickClass.
func (c *Column) AddAction(icon, title string, onClick ActionFunc) *Column {
	return c.addAction(Action{Icon: icon, Title: title, OnClick: onClick})
}

// AddDynamicAction appends an action rendered by action.Render.
func (c *Column) AddDynamicAction(action DynamicAction) *Column {
	return c.addAction(Action{Render: action.Render, OnClick: action.OnClick})
}

func (c *Column) addAction(action Action) *Column {
	c.actions = append(c.actions, action)
	if action.OnClick != nil {
		actionIndex := len(c.actions) - 1
		c.OnClick(ActionClickClass(actionIndex), func(ctx context.Context, event *Event) error {
			return action.OnClick(ctx, event.Index, event.Row, actionIndex)
		})
	}
	return c
}

// Actions returns a copy of the registered actions.
func (c *Column) Actions() []Action {
	return slices.Clone(c.actions)
}

// Build returns the plain ColumnConfig.
// If actions were added, the returned config gets a formatter
// rendering all actions in registration order.
// Build returns ErrFormatterWithActions if the column
// has a formatter and actions.
func (c *Column) Build() (ColumnConfig, error) {
	config := ColumnConfig{
		Field:     c.field,
		Title:     c.title,
		Align:     c.align,
		VAlign:    c.valign,
		Checkbox:  c.checkbox,
		Width:     c.width,
		Class:     c.class,
		Sortable:  c.sortable,
		Formatter: c.formatter,
		Events:    maps.Clone(c.events),
	}
	if len(c.actions) > 0 {
		if c.formatter != nil {
			return ColumnConfig{}, fmt.Errorf("%w: column %q", ErrFormatterWithActions, c.field)
		}
		config.Formatter = actionsFormatter(slices.Clone(c.actions))
	}
	return config, nil
}

// ColumnConfig implements ColumnSpec by calling Build.
func (c *Column) ColumnConfig() (ColumnConfig, error) {
	return c.Build()
}
