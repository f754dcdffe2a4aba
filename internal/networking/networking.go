package networking

import (
	"net/http"
)

const defaultUserAgent string = "soos-dast"

// NetworkAccess hands out http clients that stamp a set of default headers
// onto every outgoing request. Each remote surface (analysis API, GitHub)
// gets its own instance with its own header set.
type NetworkAccess interface {
	GetDefaultHeader() http.Header
	GetHttpClient() *http.Client
	AddHeaderField(key string, value string)
}

type networkImpl struct {
	userAgent    string
	staticHeader http.Header
}

type customRoundtripper struct {
	encapsulatedRoundtripper http.RoundTripper
	networkAccess            NetworkAccess
}

func (crt *customRoundtripper) RoundTrip(request *http.Request) (*http.Response, error) {
	// add default headers unless the request already carries an entry
	for k, v := range crt.networkAccess.GetDefaultHeader() {
		if _, found := request.Header[k]; !found {
			for i := range v {
				request.Header.Add(k, v[i])
			}
		}
	}
	return crt.encapsulatedRoundtripper.RoundTrip(request)
}

func NewNetworkAccess() NetworkAccess {
	return &networkImpl{
		userAgent:    defaultUserAgent,
		staticHeader: http.Header{},
	}
}

func (n *networkImpl) AddHeaderField(key string, value string) {
	n.staticHeader.Add(key, value)
}

func (n *networkImpl) GetDefaultHeader() http.Header {
	header := http.Header{}
	for k, v := range n.staticHeader {
		for i := range v {
			header.Add(k, v[i])
		}
	}
	header.Set("User-Agent", n.userAgent)
	return header
}

func (n *networkImpl) GetHttpClient() *http.Client {
	client := *http.DefaultClient
	client.Transport = &customRoundtripper{
		encapsulatedRoundtripper: http.DefaultTransport,
		networkAccess:            n,
	}
	return &client
}
