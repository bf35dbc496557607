// Command bstable prints table widget configurations
// and serves SQLite tables to table widgets.
package main

import (
	"context"
	"os"
)

func main() {
	if err := newRootCommand().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
