package main

import (
	"context"
	"fmt"
	"os"

	"github.com/goliatone/go-memberforms/internal/cli"
)

var version = "dev"

func main() {
	if err := cli.Run(context.Background(), os.Args, version); err != nil {
		fmt.Fprintf(os.Stderr, "memberforms: %v\n", err)
		os.Exit(1)
	}
}
