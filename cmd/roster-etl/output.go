package main

import (
	"encoding/json"
	"fmt"
	"io"

	appErrors "github.com/noah-isme/roster-etl/pkg/errors"
)

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return appErrors.WrapAs(fmt.Errorf("json encode: %w", err), appErrors.ErrInternal, "write output")
	}
	return nil
}
