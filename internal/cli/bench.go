package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/tnp1/internal/benchplan"
	"github.com/calvinalkan/tnp1/internal/reference"
	"github.com/calvinalkan/tnp1/internal/report"
	"github.com/calvinalkan/tnp1/internal/search"
)

// maxVerifyCache bounds the profiles the reference search is run for; it
// walks every trajectory to 1 and is far slower than the cached search.
const maxVerifyCache = 1 << 24

// progressEvery is the number of commits between progress log lines.
const progressEvery = 4096

// RunCmd returns the run command.
func RunCmd(workDir string, env map[string]string) *Command {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	fs.StringP("plan", "p", "", "Plan file (default: "+benchplan.FileName+" if present)")
	fs.IntP("runs", "n", 0, "Runs per profile (overrides plan)")
	fs.Bool("verify", false, "Check every result against the reference search")
	fs.StringP("out", "o", "", "Write a JSON report to this path")
	fs.String("log-level", "", "Log level: debug|info|warn|error (default: $TNP1_LOG_LEVEL or warn)")

	return &Command{
		Flags: fs,
		Usage: "run [flags] [profile...]",
		Short: "Run search profiles and report results",
		Long: "Run the named build-time profiles (default: from the plan) and print one line per run.\n" +
			"Profiles: " + strings.Join(search.ProfileNames(), ", ") + ".",
		Exec: func(ctx context.Context, o *IO, args []string) error {
			return execRun(ctx, o, fs, workDir, env, args)
		},
	}
}

func execRun(ctx context.Context, o *IO, fs *flag.FlagSet, workDir string, env map[string]string, args []string) error {
	planPath, _ := fs.GetString("plan")

	plan, _, err := benchplan.Load(workDir, planPath)
	if err != nil {
		return err
	}

	if len(args) > 0 {
		plan.Profiles = args
	}

	if fs.Changed("runs") {
		plan.Runs, _ = fs.GetInt("runs")
	}

	if fs.Changed("verify") {
		plan.Verify, _ = fs.GetBool("verify")
	}

	if fs.Changed("out") {
		plan.Out, _ = fs.GetString("out")
	}

	err = plan.Validate()
	if err != nil {
		return err
	}

	logger, err := newLogger(o, fs, env)
	if err != nil {
		return err
	}

	rep := report.New(time.Now())

	for _, name := range plan.Profiles {
		err = runProfile(ctx, o, &logger, rep, plan, name)
		if err != nil {
			return err
		}
	}

	var table strings.Builder

	err = rep.WriteTable(&table)
	if err != nil {
		return err
	}

	o.Printf("%s", table.String())

	for _, e := range rep.Failed() {
		if !e.Result.Trusted() {
			o.Warn(fmt.Sprintf("%s run %d: %d step counts wrapped at 16 bits", e.Profile, e.Run, e.Result.Wrapped),
				"its maximum cannot be trusted")

			continue
		}

		o.Warn(fmt.Sprintf("%s run %d: result differs from reference", e.Profile, e.Run),
			"the commit ordering is broken, rerun with --log-level=debug")
	}

	if plan.Out == "" {
		return nil
	}

	out := plan.Out
	if !filepath.IsAbs(out) {
		out = filepath.Join(workDir, out)
	}

	err = rep.WriteFile(out)
	if err != nil {
		return err
	}

	o.Println("report:", out)

	return nil
}

func runProfile(ctx context.Context, o *IO, logger *zerolog.Logger, rep *report.Report, plan benchplan.Plan, name string) error {
	params, err := search.Profile(name)
	if err != nil {
		return err
	}

	verify := plan.Verify
	if verify && params.CacheSize > maxVerifyCache {
		o.Warn("profile "+name+" is too large for the reference search", "verify it on a smaller profile")

		verify = false
	}

	var want reference.Result
	if verify {
		want = reference.Search(params)
	}

	log := logger.With().Str("profile", name).Logger()

	for run := 1; run <= plan.Runs; run++ {
		ctxErr := ctx.Err()
		if ctxErr != nil {
			return fmt.Errorf("interrupted before %s run %d: %w", name, run, ctxErr)
		}

		res, err := search.Run(search.Options{
			Params:   params,
			Logger:   &log,
			Observer: &progress{log: &log},
		})
		if err != nil {
			return fmt.Errorf("%s run %d: %w", name, run, err)
		}

		entry := report.Entry{Profile: name, Run: run, Params: params, Result: res}

		if verify {
			ok := res.Max == want.Max && res.StopReason == want.Reason
			entry.Verified = &ok
		}

		rep.Add(entry)
	}

	return nil
}

func newLogger(o *IO, fs *flag.FlagSet, env map[string]string) (zerolog.Logger, error) {
	levelName, _ := fs.GetString("log-level")
	if levelName == "" {
		levelName = env["TNP1_LOG_LEVEL"]
	}

	level := zerolog.WarnLevel

	if levelName != "" {
		parsed, err := zerolog.ParseLevel(levelName)
		if err != nil {
			return zerolog.Logger{}, fmt.Errorf("invalid log level %q: %w", levelName, err)
		}

		level = parsed
	}

	w := zerolog.ConsoleWriter{Out: o.ErrWriter(), NoColor: true, TimeFormat: time.TimeOnly}

	return zerolog.New(w).Level(level).With().Timestamp().Logger(), nil
}

// progress logs every progressEvery commits. Commits are serialized by the
// search, so the counter needs no lock.
type progress struct {
	log     *zerolog.Logger
	commits uint64
}

func (*progress) ChunkClaimed(int, uint64) {}

func (p *progress) ChunkCommitted(c search.Commit) {
	p.commits++

	if p.commits%progressEvery != 0 {
		return
	}

	p.log.Info().
		Uint64("commits", p.commits).
		Uint64("chunk", c.Start).
		Uint64("n", c.Global.N).
		Uint16("iterations", c.Global.Iterations).
		Msg("progress")
}
