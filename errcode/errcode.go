package errcode

// Code is a stable error identifier.
// It is a string newtype, comparable, allocation-free, and implements error.
type Code string

func (c Code) Error() string { return string(c) }

// Bus protocol failures (I2C). The in-progress transaction is abandoned
// without a stop condition.
const (
	ArbitrationLoss  Code = "arbitration_loss"
	IllegalStartStop Code = "illegal_start_stop"
	Nack             Code = "nack"
	// Request is reserved for caller-side misuse of a bus operation.
	Request Code = "request"
)

// Transient and policy outcomes.
const (
	OK         Code = "ok"
	WouldBlock Code = "would_block"
	Timeout    Code = "timeout"
)

// Construction and ownership.
const (
	AlreadyTaken Code = "already_taken"
	InvalidWord  Code = "invalid_word"
	Misuse       Code = "misuse"
	UnknownModel Code = "unknown_model"
	Unsupported  Code = "unsupported"

	Error Code = "error" // generic fallback
)

// E keeps an operation name and a cause alongside a Code.
type E struct {
	C   Code
	Op  string
	Msg string
	Err error
}

func (e *E) Error() string {
	s := string(e.C)
	if e.Op != "" {
		s = e.Op + ": " + s
	}
	if e.Msg != "" {
		s += ": " + e.Msg
	}
	return s
}
func (e *E) Unwrap() error { return e.Err }
func (e *E) Code() Code    { return e.C }

// Is lets errors.Is match an *E against its bare Code.
func (e *E) Is(target error) bool {
	c, ok := target.(Code)
	return ok && c == e.C
}

// Of extracts a Code from an error, defaulting to Error.
func Of(err error) Code {
	if err == nil {
		return OK
	}
	if c, ok := err.(Code); ok {
		return c
	}
	type coder interface{ Code() Code }
	if x, ok := err.(coder); ok {
		return x.Code()
	}
	type unwrapper interface{ Unwrap() error }
	if u, ok := err.(unwrapper); ok {
		return Of(u.Unwrap())
	}
	return Error
}

// Wrap attaches an operation name to a Code.
func Wrap(c Code, op string) *E { return &E{C: c, Op: op} }

// Panic reports ownership misuse. Handles are single-use; reaching this means
// the program holds a stale handle, which no caller can recover from.
func Panic(op, msg string) {
	panic(&E{C: Misuse, Op: op, Msg: msg})
}
