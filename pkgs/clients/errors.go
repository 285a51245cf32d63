package clients

import "fmt"

// InfrastructureError marks a failing external collaborator. It is surfaced
// to the caller distinctly from malformed submissions so the whole pipeline
// can be retried; this core performs no automatic retries beyond the
// bounded backoff inside each client.
type InfrastructureError struct {
	Service string
	Err     error
}

func (e *InfrastructureError) Error() string {
	return fmt.Sprintf("%s service failure: %v", e.Service, e.Err)
}

func (e *InfrastructureError) Unwrap() error {
	return e.Err
}

func infraErr(service string, err error) error {
	return &InfrastructureError{Service: service, Err: err}
}
