// Command recommender browses, serves and queries catalog recommendations.
//
// Usage:
//
//	recommender [--config=config.yaml] [--catalog=movies.json]   # interactive browser
//	recommender serve
//	recommender recommend "a quiet space drama"
//	recommender catalog
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}
