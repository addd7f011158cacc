package payment

import "fmt"

// ConfigError means a provider is missing or holds invalid credentials.
// No request is attempted when one is returned.
type ConfigError struct {
	Provider string
	Message  string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s configuration error: %s", e.Provider, e.Message)
}

// ProviderError is a failure reported by the payment provider itself.
// The attempt may be retried without re-selecting the slot.
type ProviderError struct {
	Provider string
	Message  string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s payment failed: %s", e.Provider, e.Message)
}

// VerificationError means the provider reported a payment but server-side
// verification did not confirm it. No booking is created.
type VerificationError struct {
	Provider string
	Message  string
}

func (e *VerificationError) Error() string {
	return fmt.Sprintf("%s verification failed: %s", e.Provider, e.Message)
}
