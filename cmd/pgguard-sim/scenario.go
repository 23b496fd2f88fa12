package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/hashicorp/go-multierror"
	"gopkg.in/yaml.v3"

	"github.com/xgx-io/pgguard"
	"github.com/xgx-io/pgguard/pgguardtest"
)

// body kinds a scenario can run inside the boundary
const (
	bodyReturn      = "return"
	bodyLog         = "log"
	bodyPanicText   = "panic-text"
	bodyPanicError  = "panic-error"
	bodyPanicOpaque = "panic-opaque"
	bodyReport      = "report"
	bodyHostError   = "host-error"
	bodyTryCatch    = "try-catch"
)

var bodyKinds = map[string]bool{
	bodyReturn: true, bodyLog: true, bodyPanicText: true, bodyPanicError: true,
	bodyPanicOpaque: true, bodyReport: true, bodyHostError: true, bodyTryCatch: true,
}

// Scenarios is the top-level scenario file.
type Scenarios struct {
	Scenarios []Scenario `yaml:"scenarios"`
}

// Scenario is one call from the simulated host into a guarded body.
type Scenario struct {
	Name    string        `yaml:"name"`
	Body    string        `yaml:"body"`
	Level   pgguard.Level `yaml:"level"`
	Code    pgguard.Code  `yaml:"code"`
	Catch   pgguard.Code  `yaml:"catch"`
	Message string        `yaml:"message"`
	Detail  string        `yaml:"detail"`
	Hint    string        `yaml:"hint"`
	Value   string        `yaml:"value"`
	Expect  Expect        `yaml:"expect"`
}

// Expect is the optional expected result of a scenario.
type Expect struct {
	Outcome string       `yaml:"outcome"`
	Code    pgguard.Code `yaml:"code"`
}

func loadScenarios(path string) ([]Scenario, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from the command line
	if err != nil {
		return nil, fmt.Errorf("can't read scenarios %s: %w", path, err)
	}
	var sc Scenarios
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("can't parse scenarios %s: %w", path, err)
	}
	if len(sc.Scenarios) == 0 {
		return nil, fmt.Errorf("no scenarios in %s", path)
	}

	errs := new(multierror.Error)
	for i, s := range sc.Scenarios {
		if err := s.validate(); err != nil {
			errs = multierror.Append(errs, fmt.Errorf("scenario %d (%s): %w", i, s.Name, err))
		}
	}
	return sc.Scenarios, errs.ErrorOrNil()
}

func (s Scenario) validate() error {
	errs := new(multierror.Error)
	if s.Name == "" {
		errs = multierror.Append(errs, errors.New("missing name"))
	}
	if !bodyKinds[s.Body] {
		errs = multierror.Append(errs, fmt.Errorf("unknown body %q", s.Body))
	}
	if s.Code != "" && !s.Code.Valid() {
		errs = multierror.Append(errs, fmt.Errorf("invalid code %q", s.Code))
	}
	if s.Body == bodyTryCatch && !s.Catch.Valid() {
		errs = multierror.Append(errs, fmt.Errorf("try-catch needs a valid catch code, got %q", s.Catch))
	}
	if s.Body == bodyLog && s.Level.Aborts() {
		errs = multierror.Append(errs, fmt.Errorf("log body must stay below ERROR, got %s", s.Level))
	}
	switch s.Expect.Outcome {
	case "", "returned", "errored", "terminated", "crashed":
	default:
		errs = multierror.Append(errs, fmt.Errorf("unknown expected outcome %q", s.Expect.Outcome))
	}
	return errs.ErrorOrNil()
}

func (s Scenario) level(def pgguard.Level) pgguard.Level {
	if s.Level.Valid() {
		return s.Level
	}
	return def
}

func (s Scenario) code(def pgguard.Code) pgguard.Code {
	if s.Code != "" {
		return s.Code
	}
	return def
}

func (s Scenario) report() *pgguard.ErrorReport {
	rep := pgguard.NewReport(s.code(pgguard.CodeRaiseException), s.Message).WithFunction(s.Name)
	if s.Detail != "" {
		rep = rep.WithDetail(s.Detail)
	}
	if s.Hint != "" {
		rep = rep.WithHint(s.Hint)
	}
	return rep.Ctx("scenario", s.Name)
}

type opaquePayload struct{ scenario string }

// body builds the guarded function for s.
func (s Scenario) body(be *pgguard.Backend, h *pgguardtest.Host) func() string {
	switch s.Body {
	case bodyLog:
		return func() string {
			be.Ereport(s.level(pgguard.Notice), s.report())
			return s.Value
		}
	case bodyPanicText:
		return func() string { panic(s.Message) }
	case bodyPanicError:
		return func() string { panic(errors.New(s.Message)) }
	case bodyPanicOpaque:
		return func() string { panic(opaquePayload{scenario: s.Name}) }
	case bodyReport:
		return func() string { panic(s.report().At(s.level(pgguard.Error))) }
	case bodyHostError:
		return func() string {
			pgguard.CallHostVoid(be, func() { h.Raise(pgguard.Error, s.code(pgguard.CodeInternalError), s.Message) })
			return s.Value
		}
	case bodyTryCatch:
		return func() string {
			res := pgguard.TryRun(be, func() string {
				pgguard.CallHostVoid(be, func() { h.Raise(pgguard.Error, s.code(pgguard.CodeInternalError), s.Message) })
				return s.Value
			})
			if _, err := res.UnwrapOrCatch(s.Catch); err != nil {
				be.Notice("caught %v", err)
				return "caught " + string(s.Catch)
			}
			return s.Value
		}
	default:
		return func() string { return s.Value }
	}
}
