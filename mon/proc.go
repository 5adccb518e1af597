package mon

// Handler 处理函数
type Handler interface {
	ProcResult(err error, result *Result)
}

// NopProc implement interface Handler
type NopProc struct{}

// ProcResult implement interface Handler
func (NopProc) ProcResult(error, *Result) {}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(err error, result *Result)

// ProcResult implement interface Handler
func (f HandlerFunc) ProcResult(err error, result *Result) { f(err, result) }

// Handlers fans a result out to every handler in order.
type Handlers []Handler

// ProcResult implement interface Handler
func (hs Handlers) ProcResult(err error, result *Result) {
	for _, h := range hs {
		h.ProcResult(err, result)
	}
}
