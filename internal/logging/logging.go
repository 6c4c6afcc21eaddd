// Package logging installs the process-wide apex/log handler.
package logging

import (
	"fmt"
	"io"
	"strings"

	"github.com/apex/log"
	"github.com/apex/log/handlers/json"
	"github.com/apex/log/handlers/text"
)

// Setup sets the level and the output handler of the default apex/log
// logger.  format is "text" (default) or "json".
func Setup(w io.Writer, level, format string) error {
	lvl, err := log.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		return fmt.Errorf("log level %q: %w", level, err)
	}
	h, err := handlerFor(w, format)
	if err != nil {
		return err
	}
	log.SetHandler(h)
	log.SetLevel(lvl)
	return nil
}

func handlerFor(w io.Writer, format string) (log.Handler, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "text":
		return text.New(w), nil
	case "json":
		return json.New(w), nil
	default:
		return nil, fmt.Errorf("unknown log format %q", format)
	}
}
