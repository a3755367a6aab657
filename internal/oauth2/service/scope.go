package service

// subsetOf reports whether every scope in requested is present in granted.
// Equal sets pass; an empty requested set is vacuously a subset and must be
// rejected by the caller before this check.
func subsetOf(requested, granted []string) bool {
	set := make(map[string]struct{}, len(granted))
	for _, s := range granted {
		set[s] = struct{}{}
	}
	for _, s := range requested {
		if _, ok := set[s]; !ok {
			return false
		}
	}
	return true
}
