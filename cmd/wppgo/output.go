package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/chroma/v2/quick"
	"golang.org/x/term"
)

// printJSON writes v as indented JSON, syntax highlighted when color is set.
func printJSON(w io.Writer, v any, color bool) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	data = append(data, '\n')

	if !color {
		_, err = w.Write(data)
		return err
	}
	return quick.Highlight(w, string(data), "json", "terminal256", "monokai")
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
