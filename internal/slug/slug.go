// Package slug turns arbitrary text into comparison-safe identifiers.
// Two identifiers are considered equal iff their normalized forms match,
// so every identifier comparison in the service goes through Normalize.
package slug

// Normalize lowercases s and reduces it to [a-z0-9-]: '&' and '/' map to
// '-', any other run of non-alphanumerics collapses to a single '-', and
// leading/trailing dashes are stripped. Idempotent; empty in, empty out.
func Normalize(s string) string {
	out := make([]byte, 0, len(s))
	pendingDash := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 'A' && c <= 'Z' {
			c += 'a' - 'A'
		}
		if (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') {
			if pendingDash && len(out) > 0 {
				out = append(out, '-')
			}
			pendingDash = false
			out = append(out, c)
			continue
		}
		pendingDash = true
	}
	return string(out)
}
