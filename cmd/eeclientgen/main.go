package main

import (
	"fmt"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/mark3labs/eeclientgen/internal/cli"
)

func main() {
	err := cli.Execute()
	if err == nil {
		return
	}
	fmt.Fprintln(os.Stderr, "Error:", err)
	for _, hint := range errors.GetAllHints(err) {
		fmt.Fprintln(os.Stderr, "Hint:", hint)
	}
	if errors.Is(err, cli.ErrUsage) {
		os.Exit(2)
	}
	os.Exit(1)
}
