package blackboard

import (
	"fmt"
	"regexp"
	"strings"
)

// UnresolvedKeyError is returned when a template references a key that is not
// present in the values it is resolved against.
type UnresolvedKeyError struct {
	Key string
}

func (e *UnresolvedKeyError) Error() string {
	return fmt.Sprintf("unresolved context key %q", e.Key)
}

const identifier = `[A-Za-z_][A-Za-z0-9_]*`

var (
	// placeholderPattern matches {identifier}. Any other brace is literal text.
	placeholderPattern = regexp.MustCompile(`\{(` + identifier + `)\}`)
	identifierPattern  = regexp.MustCompile(`^` + identifier + `$`)
)

// IsIdentifier reports whether key can be referenced by a placeholder.
func IsIdentifier(key string) bool {
	return identifierPattern.MatchString(key)
}

// Identifiers returns the distinct keys referenced by template, in order of
// first appearance.
func Identifiers(template string) []string {
	var keys []string
	seen := make(map[string]bool)
	for _, m := range placeholderPattern.FindAllStringSubmatch(template, -1) {
		if seen[m[1]] {
			continue
		}
		seen[m[1]] = true
		keys = append(keys, m[1])
	}
	return keys
}

// Resolve substitutes every {key} placeholder in template with the string
// form of values[key].
func Resolve(template string, values map[string]any) (string, error) {
	locs := placeholderPattern.FindAllStringSubmatchIndex(template, -1)
	if len(locs) == 0 {
		return template, nil
	}

	var b strings.Builder
	last := 0
	for _, loc := range locs {
		key := template[loc[2]:loc[3]]
		v, ok := values[key]
		if !ok {
			return "", &UnresolvedKeyError{Key: key}
		}
		b.WriteString(template[last:loc[0]])
		b.WriteString(Stringify(v))
		last = loc[1]
	}
	b.WriteString(template[last:])
	return b.String(), nil
}

// Select returns the subset of values named by keys.
func Select(values map[string]any, keys []string) (map[string]any, error) {
	selected := make(map[string]any, len(keys))
	for _, k := range keys {
		v, ok := values[k]
		if !ok {
			return nil, &UnresolvedKeyError{Key: k}
		}
		selected[k] = v
	}
	return selected, nil
}
