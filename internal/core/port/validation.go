package port

// Validator checks a request before it is dispatched. Failures come back as
// a domain ValidationFailure tagged with op.
type Validator interface {
	Validate(op string, v interface{}) error
}
