package main

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/noah-isme/roster-etl/internal/models"
	"github.com/noah-isme/roster-etl/internal/source"
	"github.com/noah-isme/roster-etl/pkg/config"
	appErrors "github.com/noah-isme/roster-etl/pkg/errors"
	"github.com/noah-isme/roster-etl/pkg/logger"
)

// sourceFlags are shared by every command that reads the inputs.
type sourceFlags struct {
	roster    string
	configs   string
	sheet     string
	delimiter string
}

func (f *sourceFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.roster, "roster", "", "Roster file, .csv or .xlsx (default ROSTER_PATH)")
	cmd.Flags().StringVar(&f.configs, "configs", "", "Directory of per-class JSON configurations (default CONFIG_DIR)")
	cmd.Flags().StringVar(&f.sheet, "sheet", "", "Worksheet to read from .xlsx rosters (default first sheet)")
	cmd.Flags().StringVar(&f.delimiter, "delimiter", ",", "CSV field delimiter")
}

func (f *sourceFlags) apply(cfg *config.Config) {
	if f.roster != "" {
		cfg.Source.RosterPath = f.roster
	}
	if f.configs != "" {
		cfg.Source.ConfigDir = f.configs
	}
	if f.sheet != "" {
		cfg.Source.RosterSheet = f.sheet
	}
}

func (f *sourceFlags) delimiterRune() (rune, error) {
	r, size := utf8.DecodeRuneInString(f.delimiter)
	if r == utf8.RuneError || size != len(f.delimiter) {
		return 0, appErrors.WrapAs(fmt.Errorf("%q is not a single character", f.delimiter), appErrors.ErrUsage, "invalid --delimiter")
	}
	return r, nil
}

// environment is the per-invocation bootstrap shared by load and validate.
type environment struct {
	cfg      *config.Config
	logger   *zap.Logger
	validate *validator.Validate
}

func bootstrap(flags *sourceFlags) (*environment, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, appErrors.WrapAs(err, appErrors.ErrUsage, "load configuration")
	}
	flags.apply(cfg)

	logr, err := logger.New(cfg)
	if err != nil {
		return nil, appErrors.WrapAs(err, appErrors.ErrInternal, "init logger")
	}

	return &environment{cfg: cfg, logger: logr, validate: validator.New()}, nil
}

func (e *environment) columns() models.RosterColumns {
	c := e.cfg.Source.Columns
	return models.RosterColumns{
		Name:         c.Name,
		Registration: c.Registration,
		Class:        c.Class,
		SocialName:   c.SocialName,
		Suspended:    c.Suspended,
		Photo:        c.Photo,
	}
}

func (e *environment) readSources(ctx context.Context, flags *sourceFlags) ([]models.ClassConfig, *models.Roster, error) {
	delim, err := flags.delimiterRune()
	if err != nil {
		return nil, nil, err
	}

	configs, err := source.NewConfigReader(e.validate).ReadDir(e.cfg.Source.ConfigDir)
	if err != nil {
		return nil, nil, appErrors.WrapAs(err, appErrors.ErrSource, "read class configurations")
	}
	if len(configs) == 0 {
		return nil, nil, appErrors.Clone(appErrors.ErrSource, fmt.Sprintf("no class configurations found in %s", e.cfg.Source.ConfigDir))
	}

	reader := source.NewRosterReader(source.WithSheet(e.cfg.Source.RosterSheet), source.WithDelimiter(delim))
	roster, err := reader.Read(ctx, e.cfg.Source.RosterPath)
	if err != nil {
		return nil, nil, appErrors.WrapAs(err, appErrors.ErrSource, "read roster")
	}

	e.logger.Info("sources read",
		zap.String("config_dir", e.cfg.Source.ConfigDir),
		zap.Int("classes", len(configs)),
		zap.String("roster", roster.Source),
		zap.Int("roster_rows", len(roster.Rows)),
	)
	return configs, roster, nil
}
