package model

// Input types that carry type-specific validation.
const (
	InputTel      = "tel"
	InputEmail    = "email"
	InputCheckbox = "checkbox"
	InputFile     = "file"
)

// FieldState is the result of validating one field. It is rebuilt on every
// validation pass and never persisted.
type FieldState struct {
	Name     string
	Type     string
	Value    string
	Checked  bool
	Required bool
	Valid    bool
	// Error is the localized message shown next to the field when Valid is false.
	Error string
}

// OutcomeKind tags a SubmissionOutcome.
type OutcomeKind string

const (
	OutcomePending OutcomeKind = "pending"
	OutcomeSuccess OutcomeKind = "success"
	OutcomeFailure OutcomeKind = "failure"
)

// Outcome drives the single banner region.
type Outcome struct {
	Kind    OutcomeKind
	Message string
}

func Pending() Outcome               { return Outcome{Kind: OutcomePending} }
func Success(message string) Outcome { return Outcome{Kind: OutcomeSuccess, Message: message} }
func Failure(reason string) Outcome  { return Outcome{Kind: OutcomeFailure, Message: reason} }
func (o Outcome) IsSettled() bool    { return o.Kind == OutcomeSuccess || o.Kind == OutcomeFailure }
func (o Outcome) String() string     { return string(o.Kind) }
