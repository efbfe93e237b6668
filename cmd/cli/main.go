package main

import (
	"context"
	"fmt"
	"os"

	"github.com/dmitrijs2005/rdb/internal/client/cli"
	"github.com/dmitrijs2005/rdb/internal/client/config"
)

func main() {

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	root := cli.NewRootCmd(cfg, os.Stdin)
	if err := root.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

}
