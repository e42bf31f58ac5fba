package court

// Kind distinguishes a successful outcome from the expected soft failures.
type Kind int

const (
	// KindOK is a success; Text may be empty when the caller supplies its own acknowledgement.
	KindOK Kind = iota
	// KindDenied is an expected user-facing failure carrying an explanation.
	KindDenied
	// KindNoPermission means the requester may not perform the operation.
	KindNoPermission
)

// Response is the result of a user-triggered operation that did not hit a hard
// error. Hard errors travel on the error return instead.
type Response struct {
	Kind Kind
	Text string
}

// OK returns a successful response.
func OK(text string) Response {
	return Response{Kind: KindOK, Text: text}
}

// Deny returns a soft-denial response.
func Deny(text string) Response {
	return Response{Kind: KindDenied, Text: text}
}

// NoPermission returns the no-permission marker.
func NoPermission() Response {
	return Response{Kind: KindNoPermission}
}

// Denied reports whether the response is a soft failure of any kind.
func (r Response) Denied() bool {
	return r.Kind != KindOK
}
