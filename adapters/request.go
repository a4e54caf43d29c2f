// Package adapters defines the passive value types exchanged between the
// adapter core and the host's transport. The core never performs I/O; it
// emits RequestData for the transport to POST and consumes the ResponseData
// the transport hands back.
package adapters

import (
	"net/http"

	"github.com/prebid/openrtb/v20/openrtb2"
)

// RequestData packages together the fields needed to make an http.Request.
type RequestData struct {
	Method  string
	Uri     string
	Body    []byte
	Headers http.Header

	// BidRequest is the decoded form of Body, retained so the host can pass
	// it back to InterpretResponse to join bids to impressions.
	BidRequest *openrtb2.BidRequest
}

// ResponseData packages together information from the server's http.Response.
type ResponseData struct {
	StatusCode int
	Body       []byte
	Headers    http.Header
}
