package models

// Envelope is the uniform shape every data-access call returns.
// Business failures are Success=false, never Go errors.
type Envelope[T any] struct {
	Success          bool              `json:"success"`
	Results          T                 `json:"results"`
	Message          string            `json:"message,omitempty"`
	ValidationErrors map[string]string `json:"validationErrors,omitempty"`
}

func OK[T any](results T) Envelope[T] {
	return Envelope[T]{Success: true, Results: results}
}

func Fail[T any](message string) Envelope[T] {
	return Envelope[T]{Success: false, Message: message}
}
