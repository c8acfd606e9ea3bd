package checkout

import (
	"errors"
	"fmt"
)

var (
	ErrCaptureInFlight = errors.New("a payment capture is already in progress")
	ErrSubmitInFlight  = errors.New("an order submission is already in progress")
	ErrNotPaid         = errors.New("payment has not been captured yet")
)

// AddressIncompleteError blocks payment and submission until every required
// address field is filled.
type AddressIncompleteError struct {
	Missing []string
}

func (e *AddressIncompleteError) Error() string {
	return fmt.Sprintf("address is incomplete: missing %v", e.Missing)
}

// SubmissionError is a failed order submission. The checkout keeps all
// entered data so the caller can retry.
type SubmissionError struct {
	StatusCode int // zero for network failures
	Body       string
	Err        error
}

func (e *SubmissionError) Error() string {
	if e.Err != nil {
		return "order submission failed: " + e.Err.Error()
	}
	return fmt.Sprintf("order submission rejected: status %d, body: %s", e.StatusCode, e.Body)
}

func (e *SubmissionError) Unwrap() error { return e.Err }

// Retryable reports whether the submission may be attempted again; both
// network failures and endpoint rejections leave the checkout retryable.
func (e *SubmissionError) Retryable() bool { return true }
