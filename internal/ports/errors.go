package ports

import "fmt"

// TransportError is a network/HTTP failure surfaced after the retry budget is
// exhausted.
type TransportError struct {
	Attempts int
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("model transport failed after %d attempt(s): %v", e.Attempts, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// InvalidJSONError means the model output could not be parsed even after one
// repair pass.
type InvalidJSONError struct {
	Raw string
	Err error
}

func (e *InvalidJSONError) Error() string {
	return fmt.Sprintf("model returned unrepairable JSON: %v", e.Err)
}

func (e *InvalidJSONError) Unwrap() error { return e.Err }

// ConfigurationError is a missing-credential or missing-setting failure. Not
// retried.
type ConfigurationError struct {
	Setting string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("missing configuration: %s", e.Setting)
}
