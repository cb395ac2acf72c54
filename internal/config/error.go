package config

import (
	"fmt"
	"strings"
)

// ConfigError collects every problem found while loading a config file so
// they can be reported together.
type ConfigError struct {
	Path    string
	Missing []string // unresolved ${VAR} references
	Errors  []string // fatal validation messages
}

func (e *ConfigError) Error() string {
	if !e.HasErrors() {
		return ""
	}

	var b strings.Builder
	if e.Path != "" {
		fmt.Fprintf(&b, "config %s:", e.Path)
	}
	if len(e.Missing) > 0 {
		sep(&b)
		b.WriteString("missing environment variables: ")
		b.WriteString(strings.Join(e.Missing, ", "))
	}
	if len(e.Errors) > 0 {
		sep(&b)
		b.WriteString("validation failed:")
		for _, msg := range e.Errors {
			b.WriteString("\n  - ")
			b.WriteString(msg)
		}
	}
	return b.String()
}

// HasErrors reports whether anything prevents the config from being used.
func (e *ConfigError) HasErrors() bool {
	return len(e.Missing) > 0 || len(e.Errors) > 0
}

func sep(b *strings.Builder) {
	if b.Len() > 0 {
		b.WriteByte('\n')
	}
}
