package pgguard

// TryBuilder runs a body with per-code handlers.
//
//	n := pgguard.NewTry(be, parse).
//		CatchWhen(pgguard.CodeDivisionByZero, func(pgguard.CaughtFailure) int { return 0 }).
//		Finally(cleanup).
//		Execute()
type TryBuilder[R any] struct {
	be      *Backend
	body    func() R
	when    map[Code]func(CaughtFailure) R
	others  func(CaughtFailure) R
	finally func()
}

// NewTry starts a builder for body.
func NewTry[R any](be *Backend, body func() R) *TryBuilder[R] {
	return &TryBuilder[R]{be: be, body: body, when: map[Code]func(CaughtFailure) R{}}
}

// CatchWhen handles failures with the given code. A later handler for the
// same code replaces the earlier one.
func (b *TryBuilder[R]) CatchWhen(code Code, h func(CaughtFailure) R) *TryBuilder[R] {
	b.when[code] = h
	return b
}

// CatchOthers handles failures no CatchWhen matched.
func (b *TryBuilder[R]) CatchOthers(h func(CaughtFailure) R) *TryBuilder[R] {
	b.others = h
	return b
}

// Finally runs f after the body and any handler. It does not run when a
// handler itself panics.
func (b *TryBuilder[R]) Finally(f func()) *TryBuilder[R] {
	b.finally = f
	return b
}

// Execute runs the body. An unhandled failure runs finally, then rethrows.
func (b *TryBuilder[R]) Execute() R {
	res := TryRun(b.be, b.body)
	if res.Ok() {
		b.runFinally()
		return res.value
	}

	code, _ := res.ErrorCode()
	h, ok := b.when[code]
	if !ok {
		h = b.others
	}
	if h == nil {
		b.runFinally()
		Rethrow(res.Failure())
	}

	out := h(res.Failure())
	res.flush()
	b.runFinally()
	return out
}

func (b *TryBuilder[R]) runFinally() {
	if b.finally != nil {
		b.finally()
	}
}
