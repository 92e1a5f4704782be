package control

import "fmt"

// Result is the outcome of one command: exactly one OK or ERROR line
// on the wire.  Handlers build Results; the connection loop renders
// them once, uniformly.
type Result struct {
	ok      bool
	payload string
}

func succeed(payload string) Result {
	return Result{ok: true, payload: payload}
}

func succeedf(format string, args ...interface{}) Result {
	return Result{ok: true, payload: fmt.Sprintf(format, args...)}
}

func fail(reason string) Result {
	return Result{payload: reason}
}

func failf(format string, args ...interface{}) Result {
	return Result{payload: fmt.Sprintf(format, args...)}
}

// OK reports whether the command succeeded.
func (r Result) OK() bool { return r.ok }

// Payload returns the response text after the OK/ERROR prefix.
func (r Result) Payload() string { return r.payload }

// Line renders the response line without its trailing newline.
func (r Result) Line() string {
	if r.ok {
		if r.payload == "" {
			return "OK"
		}
		return "OK " + r.payload
	}
	return "ERROR " + r.payload
}
