package gemini

import (
	"fmt"

	"cv-improver/internal/llm"
)

// Transport names accepted by NewProvider.
const (
	TransportREST = "rest"
	TransportSDK  = "sdk"
)

// NewProvider returns the provider for the configured transport. An empty
// transport selects REST.
func NewProvider(transport string, opts Options) (llm.Provider, error) {
	switch transport {
	case TransportSDK:
		return NewSDKClient(opts)
	case TransportREST, "":
		return NewClient(opts)
	default:
		return nil, fmt.Errorf("unknown gemini transport %q", transport)
	}
}
