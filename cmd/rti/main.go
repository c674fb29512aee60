package main

import (
	"fmt"
	"os"

	_ "time/tzdata"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
