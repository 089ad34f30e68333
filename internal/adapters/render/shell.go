package render

import (
	"fmt"
	"strings"

	"go.trai.ch/devshell/internal/core/domain"
)

// Shell renders a POSIX script that prepends the search path and then runs the hook.
func Shell(desc domain.EnvironmentDescriptor) string {
	var builder strings.Builder

	builder.WriteString(fmt.Sprintf("# devshell environment for %s (%s)\n", desc.Platform(), desc.Fingerprint()))

	if searchPath := desc.SearchPath(); len(searchPath) > 0 {
		builder.WriteString("export PATH=")
		builder.WriteString(Quote(strings.Join(searchPath, ":")))
		builder.WriteString("\"${PATH:+:$PATH}\"\n")
	}

	if hook := desc.Hook(); hook != "" {
		builder.WriteString(hook)
		if !strings.HasSuffix(hook, "\n") {
			builder.WriteString("\n")
		}
	}

	return builder.String()
}

// Quote single-quotes s for a POSIX shell.
func Quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
