package oauthx

import "strings"

// ParseScope splits a raw scope string into a deduplicated list of scope
// names. Both space- and comma-delimited forms are accepted since clients
// in the wild send either. Returns nil for an empty string.
func ParseScope(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ' ' || r == ',' || r == '\t'
	})

	seen := make(map[string]struct{}, len(fields))
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if f == "" {
			continue
		}
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		out = append(out, f)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// JoinScope renders a scope list back to its canonical space-delimited
// wire form.
func JoinScope(scopes []string) string {
	return strings.Join(scopes, " ")
}
