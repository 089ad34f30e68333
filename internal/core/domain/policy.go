package domain

import "go.trai.ch/zerr"

// FailurePolicy decides what a multi-platform build does when one platform fails.
type FailurePolicy string

const (
	// PolicyAbort discards the whole table if any platform fails.
	PolicyAbort FailurePolicy = "abort"
	// PolicyOmit drops failed platforms and keeps the rest.
	PolicyOmit FailurePolicy = "omit"
)

// ParseFailurePolicy parses a policy name. The empty string selects PolicyAbort.
func ParseFailurePolicy(s string) (FailurePolicy, error) {
	switch FailurePolicy(s) {
	case "", PolicyAbort:
		return PolicyAbort, nil
	case PolicyOmit:
		return PolicyOmit, nil
	default:
		return "", zerr.With(ErrInvalidPolicy, "policy", s)
	}
}
