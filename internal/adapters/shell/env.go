package shell

import (
	"os"
	"path/filepath"
	"slices"
	"strings"

	"go.trai.ch/devshell/internal/core/domain"
)

// allowListedEnvVars are the system environment variables an activated
// environment inherits.
var allowListedEnvVars = map[string]struct{}{
	"HOME":   {},
	"TERM":   {},
	"USER":   {},
	"PATH":   {},
	"LANG":   {},
	"TMPDIR": {},
}

// resolveEnvironment builds the process environment for desc: the allow-listed
// system variables, the descriptor's search path prepended to PATH and the
// DEVSHELL_* markers.
func resolveEnvironment(sysEnv []string, desc domain.EnvironmentDescriptor) []string {
	envMap := filterSystemEnv(sysEnv)

	if searchPath := strings.Join(desc.SearchPath(), string(os.PathListSeparator)); searchPath != "" {
		if sysPath, exists := envMap["PATH"]; exists && sysPath != "" {
			envMap["PATH"] = searchPath + string(os.PathListSeparator) + sysPath
		} else {
			envMap["PATH"] = searchPath
		}
	}

	envMap["DEVSHELL_PLATFORM"] = desc.Platform().String()
	envMap["DEVSHELL_FINGERPRINT"] = desc.Fingerprint()

	result := make([]string, 0, len(envMap))
	for k, v := range envMap {
		result = append(result, k+"="+v)
	}
	slices.Sort(result)
	return result
}

func filterSystemEnv(sysEnv []string) map[string]string {
	envMap := make(map[string]string)
	for _, entry := range sysEnv {
		k, v, ok := strings.Cut(entry, "=")
		if ok {
			if _, allowed := allowListedEnvVars[k]; allowed {
				envMap[k] = v
			}
		}
	}
	return envMap
}

// lookPath searches for an executable in the directories named by PATH in env.
func lookPath(file string, env []string) (string, error) {
	var path string
	for _, e := range env {
		if strings.HasPrefix(e, "PATH=") {
			path = strings.TrimPrefix(e, "PATH=")
			break
		}
	}

	if path == "" {
		return "", os.ErrNotExist
	}

	for _, dir := range filepath.SplitList(path) {
		if dir == "" {
			// Unix shell semantics: path element "" means "."
			dir = "."
		}
		candidate := filepath.Join(dir, file)
		if err := findExecutable(candidate); err == nil {
			return candidate, nil
		}
	}
	return "", os.ErrNotExist
}

func findExecutable(file string) error {
	d, err := os.Stat(file)
	if err != nil {
		return err
	}
	if m := d.Mode(); !m.IsDir() && m&0o111 != 0 {
		return nil
	}
	return os.ErrPermission
}
