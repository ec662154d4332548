package authsdk

import (
	"net/http"
	"strings"
	"time"
)

// DefaultTimeout bounds every backend call unless the caller supplies its own
// HTTP client.
const DefaultTimeout = 30 * time.Second

// SDKClient is a client for the Owner Portal backend API.
// It provides access to unauthenticated operations and can create authenticated Sessions.
type SDKClient struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewSDKClient creates a new backend client. A non-positive timeout selects
// DefaultTimeout.
func NewSDKClient(baseURL string, timeout time.Duration) *SDKClient {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &SDKClient{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: timeout,
		},
	}
}
