package interfaces

import (
	"context"
	"net/url"

	"market-dashboard/src/network"
)

// -----------------------------------------------------------------------------
// INetworkManager defines the contract for HTTP requests with retry logic.
// -----------------------------------------------------------------------------

type INetworkManager interface {

	// -----------------------------------------------------------------------------

	// Get performs a GET request to the specified URL with parameters.
	Get(ctx context.Context, url string, params url.Values, headers map[string]string) (*network.Response, error)

	// -----------------------------------------------------------------------------

	// PostJSON performs a POST request with a JSON body, without retries.
	PostJSON(ctx context.Context, url string, body interface{}, headers map[string]string) (*network.Response, error)
}
