// pgguard-sim runs failure scenarios through the guarded boundary against an
// in-memory host and prints what the host would log.
package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"runtime"

	"github.com/fatih/color"
	"github.com/go-pkgz/lgr"
	"github.com/jessevdk/go-flags"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"

	"github.com/xgx-io/pgguard"
	"github.com/xgx-io/pgguard/pgguardtest"
)

type options struct {
	Config      string `short:"c" long:"config" env:"PGGUARD_CONFIG" description:"config file"`
	Scenarios   string `short:"s" long:"scenarios" env:"PGGUARD_SCENARIOS" description:"scenarios file" default:"scenarios.yml"`
	HostVersion int    `long:"host-version" description:"host major version, overrides config"`
	Backtrace   bool   `long:"backtrace" description:"capture backtraces on panics"`
	Metrics     bool   `long:"metrics" description:"print boundary metrics after the run"`
	Dbg         bool   `long:"dbg" description:"debug mode"`
}

var revision = "latest"

func main() {
	fmt.Printf("pgguard-sim %s\n", revision)

	var opts options
	p := flags.NewParser(&opts, flags.PrintErrors|flags.PassDoubleDash|flags.HelpFlag)
	if _, err := p.Parse(); err != nil {
		os.Exit(1)
	}
	setupLog(opts.Dbg)

	if err := run(opts, os.Stdout); err != nil {
		log.Printf("[ERROR] %v", err)
		fmt.Printf("failed, %v\n", err)
		os.Exit(1)
	}
}

func run(opts options, out io.Writer) error {
	// the simulated host is single threaded, like the real one
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	cfg, err := pgguard.LoadConfig(opts.Config)
	if err != nil {
		return fmt.Errorf("can't load config: %w", err)
	}
	if opts.HostVersion != 0 {
		cfg.HostVersion = pgguard.HostVersion(opts.HostVersion)
	}
	if opts.Backtrace {
		cfg.Backtrace = true
	}
	if err = cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	pgguard.InstallPanicHook(cfg.HookOptions()...)

	scenarios, err := loadScenarios(opts.Scenarios)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	metrics, err := pgguard.NewMetrics(reg, cfg.Metrics.Namespace)
	if err != nil {
		return fmt.Errorf("can't register metrics: %w", err)
	}

	fmt.Fprintf(out, "host %s, %s convention, %d scenarios\n", cfg.HostVersion, cfg.HostVersion.Convention(), len(scenarios))
	failed := 0
	for _, s := range scenarios {
		ok, err := runScenario(s, cfg, metrics, out)
		if err != nil {
			return fmt.Errorf("scenario %s: %w", s.Name, err)
		}
		if !ok {
			failed++
		}
	}

	if opts.Metrics {
		if err := writeMetrics(reg, out); err != nil {
			return err
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d scenarios did not match expectations", failed, len(scenarios))
	}
	return nil
}

// runScenario runs s against a fresh host and reports whether the result
// matched the expectation.
func runScenario(s Scenario, cfg pgguard.Config, m *pgguard.Metrics, out io.Writer) (bool, error) {
	h := pgguardtest.NewHost(cfg.HostVersion)
	be, err := pgguard.New(h, cfg, pgguard.WithLogger(lgr.Default()), pgguard.WithMetrics(m))
	if err != nil {
		return false, err
	}

	fmt.Fprintf(out, "\n%s %s (%s)\n", color.New(color.Bold).Sprint("==>"), s.Name, s.Body)
	value, res := pgguardtest.CallValue(h, func() string { return pgguard.Guard(be, s.body(be, h)) })
	for _, d := range h.Emitted() {
		printDiag(out, d)
	}

	switch res.Outcome {
	case pgguardtest.Returned:
		fmt.Fprintf(out, "returned %q\n", value)
	case pgguardtest.Crashed:
		fmt.Fprintf(out, "%s %v\n", color.New(color.FgHiRed).Sprint("crashed:"), res.Crash)
	default:
		fmt.Fprintf(out, "%s %s\n", res.Outcome, res.Error.Code)
	}
	for _, v := range h.Violations() {
		fmt.Fprintf(out, "%s %s\n", color.New(color.FgHiRed).Sprint("host violation:"), v)
	}

	ok := len(h.Violations()) == 0
	if s.Expect.Outcome != "" && s.Expect.Outcome != res.Outcome.String() {
		ok = false
	}
	if s.Expect.Code != "" && s.Expect.Code != res.Error.Code {
		ok = false
	}
	if !ok {
		fmt.Fprintf(out, "%s expected %s %s\n", color.New(color.FgHiRed).Sprint("MISMATCH"), s.Expect.Outcome, s.Expect.Code)
	}
	return ok, nil
}

// printDiag prints d the way the host writes it to its log.
func printDiag(out io.Writer, d pgguardtest.Diag) {
	lc := color.New(color.FgWhite)
	switch {
	case d.Level.Aborts():
		lc = color.New(color.FgHiRed)
	case d.Level >= pgguard.Warning:
		lc = color.New(color.FgYellow)
	case d.Level >= pgguard.Info:
		lc = color.New(color.FgCyan)
	}
	fmt.Fprintf(out, "%s  %s: %s\n", lc.Sprint(d.Level.String()+":"), d.Code, d.Message)
	if d.Detail != "" {
		fmt.Fprintf(out, "DETAIL:  %s\n", d.Detail)
	}
	if d.Hint != "" {
		fmt.Fprintf(out, "HINT:  %s\n", d.Hint)
	}
	if d.Context != "" {
		fmt.Fprintf(out, "CONTEXT:  %s\n", d.Context)
	}
	fmt.Fprintf(out, "LOCATION:  %s, %s:%d\n", d.Function, d.File, d.Line)
}

func writeMetrics(reg *prometheus.Registry, out io.Writer) error {
	mfs, err := reg.Gather()
	if err != nil {
		return fmt.Errorf("can't gather metrics: %w", err)
	}
	fmt.Fprintln(out)
	for _, mf := range mfs {
		if _, err := expfmt.MetricFamilyToText(out, mf); err != nil {
			return fmt.Errorf("can't write metrics: %w", err)
		}
	}
	return nil
}

func setupLog(dbg bool) {
	logOpts := []lgr.Option{lgr.Out(io.Discard), lgr.Err(io.Discard)} // default to discard
	if dbg {
		logOpts = []lgr.Option{lgr.Debug, lgr.Msec, lgr.LevelBraces, lgr.StackTraceOnError}
	}

	colorizer := lgr.Mapper{
		ErrorFunc:  func(s string) string { return color.New(color.FgHiRed).Sprint(s) },
		WarnFunc:   func(s string) string { return color.New(color.FgRed).Sprint(s) },
		InfoFunc:   func(s string) string { return color.New(color.FgYellow).Sprint(s) },
		DebugFunc:  func(s string) string { return color.New(color.FgWhite).Sprint(s) },
		CallerFunc: func(s string) string { return color.New(color.FgBlue).Sprint(s) },
		TimeFunc:   func(s string) string { return color.New(color.FgCyan).Sprint(s) },
	}
	logOpts = append(logOpts, lgr.Map(colorizer))

	lgr.SetupStdLogger(logOpts...)
	lgr.Setup(logOpts...)
}
