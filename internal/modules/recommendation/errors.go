package recommendation

import "fmt"

// FailureKind classifies why a recommendation request produced no record
type FailureKind string

// Failure kinds. The guard/input/no-match kinds are user-recoverable and
// carry a renderable message; unknown_category and internal indicate an
// artifact/version mismatch and are surfaced as generic failures.
const (
	KindUserNotFound      FailureKind = "user_not_found"
	KindProfileIncomplete FailureKind = "profile_incomplete"
	KindBehaviorUnknown   FailureKind = "behavior_unknown"
	KindInvalidInput      FailureKind = "invalid_input"
	KindUnknownCategory   FailureKind = "unknown_category"
	KindNoMatch           FailureKind = "no_match"
	KindStore             FailureKind = "store_error"
	KindInternal          FailureKind = "internal"
)

// Failure is a typed recommendation failure
type Failure struct {
	Err     error
	Kind    FailureKind
	Message string
}

func (f *Failure) Error() string {
	if f.Err != nil {
		return fmt.Sprintf("%s: %s: %v", f.Kind, f.Message, f.Err)
	}
	return fmt.Sprintf("%s: %s", f.Kind, f.Message)
}

func (f *Failure) Unwrap() error {
	return f.Err
}

func failure(kind FailureKind, message string) *Failure {
	return &Failure{Kind: kind, Message: message}
}

func wrapFailure(kind FailureKind, message string, err error) *Failure {
	return &Failure{Kind: kind, Message: message, Err: err}
}
