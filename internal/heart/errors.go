package heart

import "fmt"

const (
	OpCoerce = "coerce"
	OpEncode = "encode"
	OpDerive = "derive"
	OpInfer  = "infer"
)

// InvalidValueError reports a value outside a field's closed vocabulary.
type InvalidValueError struct {
	Field string
	Value string
}

func (e *InvalidValueError) Error() string {
	return fmt.Sprintf("invalid %s value '%s'", e.Field, e.Value)
}

// FailureError wraps any other failure of the prediction pipeline.
type FailureError struct {
	Op    string
	Field string
	Err   error
}

func (e *FailureError) Error() string {
	return e.Err.Error()
}

func (e *FailureError) Unwrap() error {
	return e.Err
}

func errUnknownField(field string) error {
	return fmt.Errorf("unknown categorical field %q", field)
}
