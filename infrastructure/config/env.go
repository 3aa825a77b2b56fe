package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	domainconfig "github.com/felixgeelhaar/suggest-go/domain/config"
)

var (
	// ${VAR}, ${VAR:-default}, ${VAR:?message}
	bracketPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(:-[^}]*|:\?[^}]*)?\}`)
	// $VAR
	simplePattern = regexp.MustCompile(`\$([A-Za-z_][A-Za-z0-9_]*)`)
)

// envExpander expands environment variables in configuration text.
type envExpander struct {
	// strict fails if a referenced variable is not set.
	strict  bool
	missing []string
}

// Expand expands ${VAR}, ${VAR:-default}, ${VAR:?message} and $VAR. Unset
// variables expand to the empty string unless strict is set or the
// reference carries a ?message.
func (e *envExpander) Expand(input string) (string, error) {
	e.missing = nil

	result := bracketPattern.ReplaceAllStringFunc(input, func(match string) string {
		groups := bracketPattern.FindStringSubmatch(match)
		name, modifier := groups[1], groups[2]
		value, exists := os.LookupEnv(name)

		switch {
		case strings.HasPrefix(modifier, ":-"):
			if !exists || value == "" {
				return modifier[2:]
			}
		case strings.HasPrefix(modifier, ":?"):
			if !exists || value == "" {
				e.missing = append(e.missing, fmt.Sprintf("%s: %s", name, modifier[2:]))
				return match
			}
		default:
			if !exists {
				e.lookupFailed(name)
				return ""
			}
		}
		return value
	})

	result = simplePattern.ReplaceAllStringFunc(result, func(match string) string {
		value, exists := os.LookupEnv(match[1:])
		if !exists {
			e.lookupFailed(match[1:])
			return ""
		}
		return value
	})

	if len(e.missing) > 0 {
		return "", fmt.Errorf("%w: %s", domainconfig.ErrMissingEnvVar, strings.Join(e.missing, ", "))
	}
	return result, nil
}

func (e *envExpander) lookupFailed(name string) {
	if e.strict {
		e.missing = append(e.missing, name)
	}
}

// ExpandEnv expands environment variables, leaving unset ones empty.
func ExpandEnv(input string) string {
	result, _ := (&envExpander{}).Expand(input)
	return result
}

// ExpandEnvStrict expands environment variables and returns an error for
// missing ones.
func ExpandEnvStrict(input string) (string, error) {
	return (&envExpander{strict: true}).Expand(input)
}
