package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"bayesview/adapters/cpdtable"
	"bayesview/adapters/estimator"
	"bayesview/adapters/layout"
	"bayesview/adapters/picker"
	"bayesview/adapters/samples"
	"bayesview/adapters/structure"
	"bayesview/app"
	"bayesview/internal"
	"bayesview/internal/config"
	"bayesview/internal/errors"
	"bayesview/ports"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/spf13/cobra"
)

// runtime is shared by every command once the root pre-run has loaded config
type runtime struct {
	cfg *config.Config
	svc *app.InspectorService

	recode  string
	maxRows int
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	// .env is optional
	_ = godotenv.Load()

	rootCmd := newRootCmd()
	rootCmd.SetArgs(args)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error [%s]: %v\n", errors.GetCode(err), err)
		return errors.ExitCode(err)
	}
	return 0
}

func newRootCmd() *cobra.Command {
	rt := &runtime{}

	rootCmd := &cobra.Command{
		Use:           "bayesview",
		Short:         "Inspect Bayesian network structures and their estimated CPDs",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return rt.init()
		},
	}

	rootCmd.PersistentFlags().StringVar(&rt.recode, "recode", "", "Per-column code offsets, e.g. ex:1,su:1 (overrides SAMPLES_RECODE)")
	rootCmd.PersistentFlags().IntVar(&rt.maxRows, "max-rows", -1, "Keep only the first N sample rows (overrides SAMPLES_MAX_ROWS)")

	rootCmd.AddCommand(
		newGraphCmd(rt),
		newTrainCmd(rt),
		newPickCmd(rt),
		newInspectCmd(rt),
		newDescribeCmd(rt),
		newReportCmd(rt),
		newSimulateCmd(rt),
	)
	return rootCmd
}

func (rt *runtime) init() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if rt.recode != "" {
		if cfg.Samples.Recode, err = config.ParseRecode(rt.recode); err != nil {
			return err
		}
	}
	if rt.maxRows >= 0 {
		cfg.Samples.MaxRows = rt.maxRows
	}
	if level, ok := internal.ParseLogLevel(cfg.LogLevel); ok {
		internal.DefaultLogger.SetLevel(level)
	}
	rt.cfg = cfg

	layoutConfig := layout.DefaultConfig()
	layoutConfig.Updates = cfg.Layout.Updates
	layoutConfig.Attempts = cfg.Layout.Attempts
	layoutConfig.Seed = cfg.Layout.Seed

	rt.svc = app.NewInspectorService(
		structure.NewLoader(),
		layout.NewEngine(layoutConfig),
		estimator.New(cfg.Estimator.Workers),
		cpdtable.New(),
		picker.NewResolver,
	).WithPickRadius(cfg.Display.PickRadius)
	return nil
}

func (rt *runtime) sampleOptions() (samples.Options, error) {
	delimiter, err := rt.cfg.Samples.DelimiterRune()
	if err != nil {
		return samples.Options{}, err
	}
	return samples.Options{
		Delimiter: delimiter,
		MaxRows:   rt.cfg.Samples.MaxRows,
		Recode:    rt.cfg.Samples.Recode,
		Sheet:     rt.cfg.Samples.Sheet,
	}, nil
}

// sampleSource picks the source for a samples argument. "sql" runs
// SAMPLES_QUERY against DATABASE_URL and "sql:<query>" runs the given query;
// anything else is a file path.
func (rt *runtime) sampleSource(arg string) (ports.SampleSource, func(), error) {
	opts, err := rt.sampleOptions()
	if err != nil {
		return nil, nil, err
	}
	if arg != "sql" && !strings.HasPrefix(arg, "sql:") {
		return samples.NewFileSource(arg, opts), func() {}, nil
	}

	query := strings.TrimPrefix(strings.TrimPrefix(arg, "sql"), ":")
	if query == "" {
		query = rt.cfg.Samples.Query
	}
	if query == "" {
		return nil, nil, errors.ConfigInvalid("no sample query: set SAMPLES_QUERY or pass sql:<query>")
	}
	if rt.cfg.Database.URL == "" {
		return nil, nil, errors.ConfigInvalid("DATABASE_URL is required for SQL samples")
	}

	db, err := sqlx.Open("postgres", rt.cfg.Database.URL)
	if err != nil {
		return nil, nil, errors.DatabaseError("failed to open database", err)
	}
	return samples.NewSQLSource(db, query, opts), func() { db.Close() }, nil
}

// trained loads a structure and samples and estimates every CPD
func (rt *runtime) trained(ctx context.Context, structurePath, samplesArg string) (*session, error) {
	model, err := rt.svc.LoadStructure(ctx, structurePath)
	if err != nil {
		return nil, err
	}
	source, closeSource, err := rt.sampleSource(samplesArg)
	if err != nil {
		return nil, err
	}
	defer closeSource()

	table, err := rt.svc.LoadSamples(ctx, source)
	if err != nil {
		return nil, err
	}
	est, err := rt.svc.Train(ctx, model, table)
	if err != nil {
		return nil, err
	}
	return &session{model: model, est: est}, nil
}
