package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/AnyUserName/b64jpeg/cmd"
	"github.com/AnyUserName/b64jpeg/internal/pipeline"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "b64jpeg: %v\n", err)
		if errors.Is(err, pipeline.ErrNoInputFiles) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}
