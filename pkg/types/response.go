// Package types holds the wire envelopes shared by every stock and order
// endpoint. Handlers never write raw payloads; everything goes out wrapped
// in one of these.
package types

// SuccessEnvelope wraps a successful response body under "data".
type SuccessEnvelope struct {
	Data any `json:"data"`
}

// APIError is the client-facing error body. Code carries the machine
// readable kind (validation, insufficient_stock, conflict, ...); Details is
// optional context such as the shortfall per product on a failed allocation.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// ErrorEnvelope wraps an APIError under "error".
type ErrorEnvelope struct {
	Error APIError `json:"error"`
}
