package events

import (
	"net/http"
	"time"
)

// HTTPStart fires when the GraphQL endpoint accepts a request. The
// publishing context carries the request ID.
type HTTPStart struct {
	Request *http.Request
}

// HTTPFinish fires once the response status is written.
type HTTPFinish struct {
	Request  *http.Request
	Status   int
	Duration time.Duration
}
