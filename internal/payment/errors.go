package payment

import (
	"errors"
	"fmt"
)

// ErrUnexpectedResponse indicates the provider answered with something
// other than the JSON payment-link envelope (typically a raw HTML page).
var ErrUnexpectedResponse = errors.New("unexpected response from payment provider")

// ErrFractionalAmount indicates an amount that is not a whole currency
// unit. The provider's montant field has no sub-unit precision, so cents
// amounts must be divisible by 100.
var ErrFractionalAmount = errors.New("amount is not a whole currency unit")

// ProviderError represents a non-200 answer from the provider.
type ProviderError struct {
	StatusCode int
	Body       string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("payment provider error: HTTP %d", e.StatusCode)
}
