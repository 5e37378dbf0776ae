package parksmart

import "net/http"

type apiRoundTripper struct {
	inner  http.RoundTripper
	client *Client
}

func (a apiRoundTripper) RoundTrip(request *http.Request) (*http.Response, error) {
	request.Header.Set("User-Agent", "parkctl")
	if a.client.config.APIKey != "" {
		request.Header.Set("Authorization", "Bearer "+a.client.config.APIKey)
	}
	return a.inner.RoundTrip(request)
}

var _ http.RoundTripper = &apiRoundTripper{}
