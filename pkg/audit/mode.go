package audit

import "fmt"

// Mode is the policy stance of a rule.
type Mode string

const (
	// Whitelist names the only allowed pattern set; an entry that
	// fails to match it is a violation.
	Whitelist Mode = "whitelist"

	// Blacklist names a forbidden pattern set; an entry that matches
	// it is a violation.
	Blacklist Mode = "blacklist"
)

// ParseMode converts a raw mode string from a rule definition. The
// empty string defaults to Blacklist, which was the engine's behavior
// before mode became configurable.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case Whitelist:
		return Whitelist, nil
	case Blacklist, "":
		return Blacklist, nil
	default:
		return "", fmt.Errorf("unknown rule mode %q", s)
	}
}
