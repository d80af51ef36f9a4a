package main

import (
	"fmt"
	"os"

	fetchcli "github.com/nojima/go-fetch"
)

func main() {
	if err := fetchcli.Main(); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		os.Exit(1)
	}
}
