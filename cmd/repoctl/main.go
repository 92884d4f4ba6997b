package main

import (
	"context"
	"fmt"
	"os"

	"github.com/dmitrijs2005/reposhelf/internal/cli"
)

func main() {
	code, err := cli.Run(context.Background(), os.Args[1:], os.Stdout, os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "repoctl: %v\n", err)
	}
	os.Exit(code)
}
