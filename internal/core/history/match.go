package history

import (
	"strings"
	"time"

	"github.com/dlclark/regexp2"
)

// matchTimeout bounds a single regex evaluation against one entry. A
// pathological pattern times out and counts as a miss for that entry.
const matchTimeout = 100 * time.Millisecond

type matcher interface {
	match(command string) bool
}

// prefixMatcher matches commands starting with the search text.
type prefixMatcher string

func (p prefixMatcher) match(command string) bool {
	return strings.HasPrefix(command, string(p))
}

// regexMatcher tests an ECMAScript pattern anywhere in the command. A nil re
// means the pattern did not compile and nothing matches.
type regexMatcher struct {
	re *regexp2.Regexp
}

func (m regexMatcher) match(command string) bool {
	if m.re == nil {
		return false
	}

	ok, err := m.re.MatchString(command)
	if err != nil {
		return false
	}
	return ok
}

func newMatcher(search string, regex bool) matcher {
	if !regex {
		return prefixMatcher(search)
	}

	re, err := regexp2.Compile(search, regexp2.ECMAScript)
	if err != nil {
		return regexMatcher{}
	}
	re.MatchTimeout = matchTimeout

	return regexMatcher{re: re}
}
