package service

// ValidationError marks user-correctable input problems.  The message is
// shown to the submitter as-is, so it stays in the form's language.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func validationErr(msg string) error { return &ValidationError{Msg: msg} }
