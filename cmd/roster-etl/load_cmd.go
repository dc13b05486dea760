package main

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/noah-isme/roster-etl/internal/repository"
	"github.com/noah-isme/roster-etl/internal/service"
	"github.com/noah-isme/roster-etl/pkg/database"
	appErrors "github.com/noah-isme/roster-etl/pkg/errors"
	"github.com/noah-isme/roster-etl/pkg/export"
	"github.com/noah-isme/roster-etl/pkg/lock"
	"github.com/noah-isme/roster-etl/pkg/metrics"
	"github.com/noah-isme/roster-etl/pkg/storage"
)

type loadFlags struct {
	atomic       bool
	reset        bool
	strict       bool
	dryRun       bool
	reportFormat string
}

func newLoadCmd() *cobra.Command {
	var (
		src  sourceFlags
		opts loadFlags
	)

	cmd := &cobra.Command{
		Use:   "load",
		Short: "Validate the sources and load classes, subjects, students and grades",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLoad(cmd.Context(), cmd, cmd.OutOrStdout(), &src, opts)
		},
	}

	src.register(cmd)
	cmd.Flags().BoolVar(&opts.atomic, "atomic", false, "Commit all stages in a single transaction (default LOADER_ATOMIC)")
	cmd.Flags().BoolVar(&opts.reset, "reset", false, "Truncate the target tables before loading (default LOADER_RESET)")
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "Reject roster rows with unconfigured classes before writing (default LOADER_STRICT)")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "Validate only, do not connect to the database")
	cmd.Flags().StringVar(&opts.reportFormat, "report-format", "", "Run report artifact: none, csv or pdf (default REPORT_FORMAT)")
	return cmd
}

func runLoad(ctx context.Context, cmd *cobra.Command, out io.Writer, src *sourceFlags, opts loadFlags) (err error) {
	if ctx == nil {
		ctx = context.Background()
	}

	env, err := bootstrap(src)
	if err != nil {
		return err
	}
	defer env.logger.Sync() //nolint:errcheck
	cfg := env.cfg

	changed := func(name string) bool { return cmd != nil && cmd.Flags().Changed(name) }
	if changed("atomic") {
		cfg.Loader.Atomic = opts.atomic
	}
	if changed("reset") {
		cfg.Loader.Reset = opts.reset
	}
	if changed("strict") {
		cfg.Loader.Strict = opts.strict
	}
	if opts.reportFormat != "" {
		cfg.Report.Format = opts.reportFormat
	}

	renderer, err := export.ForFormat(cfg.Report.Format)
	if err != nil {
		return appErrors.WrapAs(err, appErrors.ErrUsage, "invalid report format")
	}

	configs, roster, err := env.readSources(ctx, src)
	if err != nil {
		return err
	}

	recorder := metrics.NewRecorder()
	repos := service.LoaderRepositories{
		Classes:  repository.NewClassRepository(),
		Subjects: repository.NewSubjectRepository(),
		Students: repository.NewStudentRepository(),
		Grades:   repository.NewGradeRepository(),
		Reset:    repository.NewResetRepository(),
	}
	loadOpts := service.LoadOptions{
		Atomic:  cfg.Loader.Atomic,
		Reset:   cfg.Loader.Reset,
		Strict:  cfg.Loader.Strict,
		DryRun:  opts.dryRun,
		Columns: env.columns(),
	}

	var loader *service.LoaderService
	if opts.dryRun {
		loader = service.NewLoaderService(nil, repos, recorder, env.validate, env.logger)
	} else {
		release, err := acquireRunLock(ctx, env)
		if err != nil {
			return err
		}
		defer release()

		db, err := database.NewPostgres(ctx, cfg.Database)
		if err != nil {
			return appErrors.WrapAs(err, appErrors.ErrDatabase, "connect to database")
		}
		defer db.Close() //nolint:errcheck

		loader = service.NewLoaderService(db, repos, recorder, env.validate, env.logger)
	}

	report, loadErr := loader.Load(ctx, configs, roster, loadOpts)

	recorder.ObserveRun(report)
	if !opts.dryRun {
		pushCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		if err := recorder.Push(pushCtx, cfg.Metrics.PushgatewayURL, cfg.Metrics.Job); err != nil {
			env.logger.Warn("metrics push failed", zap.Error(err))
		}
		cancel()
	}

	if renderer != nil {
		store, err := storage.NewLocalStorage(cfg.Report.Dir)
		if err != nil {
			env.logger.Warn("report storage unavailable", zap.Error(err))
		} else {
			path, err := service.NewReportService(store, renderer, cfg.Report.Retention, env.logger).Write(report)
			if err != nil {
				env.logger.Warn("run report not written", zap.Error(err))
			} else {
				env.logger.Info("run report written", zap.String("path", path))
			}
		}
	}

	if err := writeJSON(out, report); err != nil && loadErr == nil {
		return err
	}
	return loadErr
}

// acquireRunLock takes the redis run lock when enabled and returns its release func.
func acquireRunLock(ctx context.Context, env *environment) (func(), error) {
	if !env.cfg.Lock.Enabled {
		return func() {}, nil
	}

	client, err := lock.NewRedis(ctx, env.cfg.Redis)
	if err != nil {
		return nil, appErrors.WrapAs(err, appErrors.ErrDatabase, "connect to redis")
	}

	runLock := lock.NewRunLock(client, env.cfg.Lock.Key, env.cfg.Lock.TTL)
	if err := runLock.Acquire(ctx); err != nil {
		_ = client.Close()
		if errors.Is(err, lock.ErrHeld) {
			return nil, appErrors.WrapAs(err, appErrors.ErrLocked, "another load is running")
		}
		return nil, appErrors.WrapAs(err, appErrors.ErrDatabase, "acquire run lock")
	}
	env.logger.Info("run lock acquired", zap.String("key", env.cfg.Lock.Key))

	return func() {
		releaseCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := runLock.Release(releaseCtx); err != nil {
			env.logger.Warn("run lock release failed", zap.Error(err))
		}
		_ = client.Close()
	}, nil
}
