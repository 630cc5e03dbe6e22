package main

import (
	"fmt"
	"os"

	"github.com/dmitrijs2005/azura/internal/authctl"
)

func main() {
	if err := authctl.NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
