package bstable

import "context"

// Widget is the handle of a rendered table widget
// used to invoke its imperative methods like
// "refresh", "getData", "selectPage", "getRowByUniqueId",
// "updateByUniqueId", "removeByUniqueId", "append",
// "removeAll", "destroy" or "getOptions".
type Widget interface {
	Call(ctx context.Context, elementID, method string, args ...any) (result any, err error)
}

// WidgetFunc implements Widget for a function.
type WidgetFunc func(ctx context.Context, elementID, method string, args ...any) (result any, err error)

func (f WidgetFunc) Call(ctx context.Context, elementID, method string, args ...any) (result any, err error) {
	return f(ctx, elementID, method, args...)
}
