package util

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// PrintJSON pretty-prints a value to stdout for --json output.
func PrintJSON(obj any) error {
	return FprintJSON(os.Stdout, obj)
}

func FprintJSON(w io.Writer, obj any) error {
	txt, err := json.MarshalIndent(obj, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(txt))
	return err
}
