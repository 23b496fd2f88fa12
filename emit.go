// emit.go — handing a Report to the host's diagnostic machinery.
//
// Every string the host keeps is allocated from its error arena; the active
// arena is switched only around those allocations and restored right after.
// At ERROR and above the host does not return from the finishing call. When
// it does return (sub-ERROR), emit frees what it allocated and returns with
// the active arena unchanged.
package pgguard

// emit sends r to the host under the backend's convention.
func (b *Backend) emit(r Report) {
	b.checkThread()
	r = normalizeReport(r)
	b.metrics.emittedAt(r.Level)
	b.log.Logf("[DEBUG] emit %s %s at %s", r.Level, r.Err.code, r.Err.loc.Function)

	switch b.conv {
	case ConventionLegacy:
		b.emitLegacy(r)
	default:
		b.emitModern(r)
	}
}

// withArena runs fn with a as the active arena and restores the previous
// one afterwards, also when fn panics.
func (b *Backend) withArena(a Arena, fn func()) {
	prev := b.host.SwitchArena(a)
	defer b.host.SwitchArena(prev)
	fn()
}

// diagStrings are the optional fields of a diagnostic, allocated in the
// error arena. Zero fields are absent.
type diagStrings struct {
	msg, detail, hint, context CString
}

func (b *Backend) allocDiag(e *ErrorReport) diagStrings {
	var s diagStrings
	b.withArena(b.host.ErrorArena(), func() {
		s.msg = b.host.PStrdup(e.msg)
		s.detail = b.pstrdupOpt(e.DetailWithBacktrace())
		s.hint = b.pstrdupOpt(e.hint)
		s.context = b.pstrdupOpt(e.ContextMessage())
	})
	return s
}

func (b *Backend) allocLocation(loc Location) (file, function CString) {
	b.withArena(b.host.ErrorArena(), func() {
		file = b.host.PStrdup(loc.File)
		function = b.pstrdupOpt(loc.Function)
	})
	return file, function
}

func (b *Backend) pstrdupOpt(s string) CString {
	if s == "" {
		return 0
	}
	return b.host.PStrdup(s)
}

// attach passes each present field to its setter and frees it afterwards.
// The message is always attached.
func (b *Backend) attach(code Code, s diagStrings) {
	h := b.host
	h.ErrCode(code.Raw())
	h.ErrMsg(s.msg)
	h.PFree(s.msg)
	for _, f := range []struct {
		p   CString
		set func(CString)
	}{
		{s.detail, h.ErrDetail},
		{s.hint, h.ErrHint},
		{s.context, h.ErrContextMsg},
	} {
		if f.p == 0 {
			continue
		}
		f.set(f.p)
		h.PFree(f.p)
	}
}

func (b *Backend) freeLocation(file, function CString) {
	b.host.PFree(file)
	if function != 0 {
		b.host.PFree(function)
	}
}

func (b *Backend) emitModern(r Report) {
	h := b.host
	if !h.ErrStart(r.Level.Raw(b.version), 0) {
		if r.Level.Aborts() {
			panic(newDefect("host declined a diagnostic at %s", r.Level))
		}
		return
	}

	b.attach(r.Err.code, b.allocDiag(r.Err))
	file, function := b.allocLocation(r.Err.loc)
	h.ErrFinish(file, int32(r.Err.loc.Line), function) //nolint:gosec // line numbers fit
	if r.Level.Aborts() {
		panic(newDefect("host returned from errfinish at %s", r.Level))
	}
	b.freeLocation(file, function)
}

func (b *Backend) emitLegacy(r Report) {
	h := b.host
	file, function := b.allocLocation(r.Err.loc)
	if h.ErrStartAt(r.Level.Raw(b.version), file, int32(r.Err.loc.Line), function, 0) { //nolint:gosec // line numbers fit
		b.attach(r.Err.code, b.allocDiag(r.Err))
		h.ErrFinishLegacy()
	}
	if r.Level.Aborts() {
		panic(newDefect("host returned from errfinish at %s", r.Level))
	}
	b.freeLocation(file, function)
}
