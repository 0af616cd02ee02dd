package dispatcher

import (
	"sync"

	"github.com/morezero/slashbot/pkg/response"
)

// Completion receives the single outcome of a dispatched request.
type Completion interface {
	Done(err error, resp *response.Response)
}

// CompletionFunc adapts a function to Completion.
type CompletionFunc func(err error, resp *response.Response)

// Done calls f.
func (f CompletionFunc) Done(err error, resp *response.Response) { f(err, resp) }

// Once wraps c so only the first Done call is forwarded.
func Once(c Completion) Completion {
	if o, ok := c.(*onceCompletion); ok {
		return o
	}
	return &onceCompletion{next: c}
}

type onceCompletion struct {
	once sync.Once
	next Completion
}

func (o *onceCompletion) Done(err error, resp *response.Response) {
	o.once.Do(func() { o.next.Done(err, resp) })
}
