package cmdutils

import (
	"encoding/json"
	"fmt"
	"io"
)

const logo = "🌾"

func PrintResponse(text string) {
	if text == "" {
		return
	}

	fmt.Printf("\n%s oatsbridge\n%s\n\n", logo, text)
}

// PrintJSON writes v as two-space indented JSON.
func PrintJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
