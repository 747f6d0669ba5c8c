package audit

import "fmt"

// InvalidRuleError indicates a rule definition that cannot be compiled
// into the rule book. It is always a build-time error; no rule from
// the offending definition is indexed.
type InvalidRuleError struct {
	RuleIndex int
	RuleName  string
	Message   string
	Cause     error
}

// Error returns the error message.
func (e *InvalidRuleError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("rule %d (%s): %s: %v", e.RuleIndex, e.RuleName, e.Message, e.Cause)
	}
	return fmt.Sprintf("rule %d (%s): %s", e.RuleIndex, e.RuleName, e.Message)
}

// Unwrap returns the underlying cause.
func (e *InvalidRuleError) Unwrap() error {
	return e.Cause
}

// LoadError indicates the rules file could not be read.
type LoadError struct {
	FilePath string
	Message  string
	Cause    error
}

// Error returns the error message.
func (e *LoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("loading rules file %q: %s: %v", e.FilePath, e.Message, e.Cause)
	}
	return fmt.Sprintf("loading rules file %q: %s", e.FilePath, e.Message)
}

// Unwrap returns the underlying cause.
func (e *LoadError) Unwrap() error {
	return e.Cause
}

// ParseError indicates the rules file was read but its contents could
// not be decoded.
type ParseError struct {
	FilePath string
	Cause    error
}

// Error returns the error message.
func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing rules file %q: %v", e.FilePath, e.Cause)
}

// Unwrap returns the underlying cause.
func (e *ParseError) Unwrap() error {
	return e.Cause
}
