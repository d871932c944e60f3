package domain

// ErrorKind classifies the terminal failure mode of one enhancement call.
type ErrorKind int

const (
	KindNone ErrorKind = iota
	KindRateLimited
	KindTimeout
	KindClientError
	KindServerError
	KindMalformedResponse
	KindUnknown
)

func (k ErrorKind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindRateLimited:
		return "rate_limited"
	case KindTimeout:
		return "timeout"
	case KindClientError:
		return "client_error"
	case KindServerError:
		return "server_error"
	case KindMalformedResponse:
		return "malformed_response"
	default:
		return "unknown"
	}
}

// CallOutcome is the final result of one executor invocation for one
// document. RawResponse holds the last provider payload regardless of
// outcome so the persister can always archive it.
type CallOutcome struct {
	Success     bool
	Content     string
	ErrorKind   ErrorKind
	RawResponse []byte
	Attempts    int
	Err         error
}
