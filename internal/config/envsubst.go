package config

import (
	"os"
	"regexp"
)

// envVarPattern matches ${VAR}, ${VAR:-default} and ${VAR:?message}.
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?::([-?])([^}]*))?\}`)

// substituteEnvVars replaces environment references in content.
// References that cannot be resolved are left in place and reported; a
// :? reference reports its message along with the name. With either
// operator an empty variable counts as unset.
func substituteEnvVars(content string) (string, []string) {
	var missing []string
	seen := make(map[string]bool)
	report := func(s string) {
		if !seen[s] {
			seen[s] = true
			missing = append(missing, s)
		}
	}

	out := envVarPattern.ReplaceAllStringFunc(content, func(match string) string {
		m := envVarPattern.FindStringSubmatch(match)
		name, op, arg := m[1], m[2], m[3]

		value, ok := os.LookupEnv(name)
		if ok && (value != "" || op == "") {
			return value
		}
		switch op {
		case "-":
			return arg
		case "?":
			report(name + ": " + arg)
		default:
			report(name)
		}
		return match
	})
	return out, missing
}
