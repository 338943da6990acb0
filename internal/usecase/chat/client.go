package chat

import "context"

// ResultKind names the three ways a completion call can come back.
type ResultKind int

const (
	// Answered: the call succeeded and the answer text was extracted.
	Answered ResultKind = iota
	// Malformed: the endpoint replied, but the expected answer field is
	// missing; Text carries a pretty-printed dump of the raw response so
	// the failure stays visible instead of being swallowed.
	Malformed
	// Failed: the call itself failed or the body was not parseable at all.
	Failed
)

type Result struct {
	Kind ResultKind
	Text string
	Err  error
}

// Client performs exactly one outbound completion request per Send. No
// retries and no client-side timeout: a hung request blocks the turn until
// the transport gives up. Known limitation, kept deliberately.
type Client interface {
	Send(ctx context.Context, entries []Entry) Result
}
