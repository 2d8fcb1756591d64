package gateway

// successStatuses is the fixed vocabulary the gateway uses for captured
// payments. It is an external contract; do not extend it without a
// gateway-side change.
var successStatuses = map[string]struct{}{
	"SENT_FOR_CAPTURE": {},
	"SUCCESS":          {},
	"COMPLETED":        {},
}

// IsSuccessStatus reports whether a token status string represents a
// captured payment. Anything else, including empty, is a failure.
func IsSuccessStatus(status string) bool {
	_, ok := successStatuses[status]
	return ok
}
