package commands

import (
	"fmt"
	"os"
	"regexp"
	"strings"
)

var envKeyRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// parseEnvSpecs parses --env values into environment variables. A spec is
// either KEY=VALUE, or a bare KEY inherited from the current environment.
func parseEnvSpecs(specs []string) (map[string]string, error) {
	if len(specs) == 0 {
		return nil, nil
	}

	env := map[string]string{}
	for _, spec := range specs {
		key, value, found := strings.Cut(spec, "=")
		if !envKeyRe.MatchString(key) {
			return nil, fmt.Errorf("invalid environment variable name %q", key)
		}

		if !found {
			hostValue, ok := os.LookupEnv(key)
			if !ok {
				return nil, fmt.Errorf("environment variable %q is not set", key)
			}
			value = hostValue
		}

		env[key] = value
	}

	return env, nil
}
