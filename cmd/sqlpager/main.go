package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/Alp4ka/sqlpager/cmd/sqlpager/commands"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	rootCmd := commands.NewRootCmd()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
