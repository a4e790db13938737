package naming

// Unknown replaces a field that has no alphanumeric content.
const Unknown = "UNKNOWN"

// SafeString maps s to a filesystem-safe token: every byte outside
// [A-Za-z0-9] becomes '_', trailing underscores are dropped, and an empty
// result becomes [Unknown]. Non-ASCII input is handled bytewise, so each
// byte of a multi-byte character becomes its own underscore.
func SafeString(s string) string {
	out := make([]byte, 0, len(s))
	keep := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isAlnum(c) {
			out = append(out, c)
			keep = len(out)
		} else {
			out = append(out, '_')
		}
	}
	if keep == 0 {
		return Unknown
	}
	return string(out[:keep])
}

func isAlnum(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}
