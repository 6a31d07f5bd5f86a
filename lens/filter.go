package lens

import "regexp"

// MatchAll is the filter used when no struct is targeted
const MatchAll = ".*"

// CompileFilter returns the struct-name filter passed to gopium's -r flag.
// Without a name every struct matches; otherwise only the exact name does.
// The name is quoted so generic or otherwise unusual names cannot inject
// pattern syntax.
func CompileFilter(structName string) *regexp.Regexp {
	if structName == "" {
		return regexp.MustCompile(MatchAll)
	}

	return regexp.MustCompile("^" + regexp.QuoteMeta(structName) + "$")
}
