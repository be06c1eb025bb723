package registry

import "strings"

// MaxUsers caps the allow-list; tokens past the cap are silently dropped,
// matching the legacy firmware behavior.
const MaxUsers = 10

// Registry holds the set of user ids allowed to command the device remotely.
// It is rebuilt on every configuration (re)load and read-only afterwards, so
// concurrent readers need no synchronization.
type Registry struct {
	ids []int64
}

func New() *Registry {
	return &Registry{ids: make([]int64, 0, MaxUsers)}
}

// Load replaces the current set with the ids parsed from a comma-separated
// string. Tokens that are not clean integers degrade to a best-effort
// leading-digits conversion (invalid -> 0) instead of failing the whole set.
func (r *Registry) Load(raw string) {
	r.ids = r.ids[:0]
	for _, tok := range strings.Split(raw, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		if len(r.ids) >= MaxUsers {
			break
		}
		r.ids = append(r.ids, permissiveInt64(tok))
	}
}

// IsAuthorized reports whether id is in the loaded set. Linear scan; the set
// never exceeds MaxUsers entries.
func (r *Registry) IsAuthorized(id int64) bool {
	for _, v := range r.ids {
		if v == id {
			return true
		}
	}
	return false
}

// Count returns the number of loaded ids, for the status report.
func (r *Registry) Count() int {
	return len(r.ids)
}

// permissiveInt64 converts the leading signed-integer prefix of s, returning
// 0 when there is none. This mirrors the lenient string-to-int conversion
// the original configuration format tolerated.
func permissiveInt64(s string) int64 {
	var (
		i   int
		neg bool
	)
	if i < len(s) && (s[i] == '-' || s[i] == '+') {
		neg = s[i] == '-'
		i++
	}
	var n int64
	for ; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			break
		}
		n = n*10 + int64(s[i]-'0')
	}
	if neg {
		return -n
	}
	return n
}
