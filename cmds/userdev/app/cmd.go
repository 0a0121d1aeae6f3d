package app

import (
	"context"
	"fmt"
	"os"

	"github.com/mandelsoft/goutils/generics"
	"github.com/mandelsoft/logging"
	"github.com/mandelsoft/vfs/pkg/osfs"
	"github.com/mandelsoft/vfs/pkg/vfs"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/mandelsoft/userdev/pkg/config"
	"github.com/mandelsoft/userdev/pkg/configurations"
	"github.com/mandelsoft/userdev/pkg/flavor"
	"github.com/mandelsoft/userdev/pkg/stages"
	"github.com/mandelsoft/userdev/pkg/utils"
	"github.com/mandelsoft/userdev/pkg/workspace"
)

const DEFAULT_CONFIG = "userdev.yaml"

type Options struct {
	fs     vfs.FileSystem
	getenv func(string) string

	config   string
	level    string
	flags    *pflag.FlagSet
	settings config.Config
	workers  int

	services *stages.Services
}

// Environment describes the process environment of the command.
// Services, if given, replace the configured external tools.
type Environment struct {
	Getenv   func(string) string
	Services *stages.Services
}

// New creates the userdev command. The optional filesystem
// is used for all file operations.
func New(fss ...vfs.FileSystem) *cobra.Command {
	return NewFor(Environment{}, fss...)
}

func NewFor(env Environment, fss ...vfs.FileSystem) *cobra.Command {
	getenv := utils.OptionalDefaulted(os.Getenv, env.Getenv)
	opts := &Options{
		fs:       utils.OptionalDefaulted(vfs.FileSystem(osfs.OsFs), fss...),
		getenv:   getenv,
		config:   getenv("USERDEV_CONFIG"),
		level:    "warn",
		services: env.Services,
	}
	if opts.config == "" {
		opts.config = DEFAULT_CONFIG
	}

	maincmd := &cobra.Command{
		Use:   "userdev <options> <cmd> <args>",
		Short: "configure a mod development workspace",
		Long: `
This command configures the developer workspace for a flavor of the
modding api. It resolves the api distribution, declares the
transformation stages and executes them on demand.

Settings are taken from the config file, USERDEV_* environment
variables and the command line, in this order of precedence.
`,
		SilenceUsage:      true,
		TraverseChildren:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return opts.setupLogging() },
	}

	flags := maincmd.PersistentFlags()
	opts.flags = flags
	flags.StringVarP(&opts.config, "config", "c", opts.config, "config file")
	flags.StringVarP(&opts.level, "log-level", "L", opts.level, "log level")
	s := &opts.settings
	s.Flavor = flags.StringP("flavor", "f", "", "api flavor")
	s.McVersion = flags.String("mc-version", "", "minecraft version")
	s.ApiVersion = flags.StringP("api-version", "a", "", "api version")
	s.ProjectDir = flags.StringP("project-dir", "p", "", "project directory")
	s.BuildDir = flags.String("build-dir", "", "build directory")
	s.CacheDir = flags.String("cache-dir", "", "cache directory")
	s.Mirror = flags.String("mirror", "", "download mirror")
	s.OS = flags.String("os", "", "platform for native libraries")
	flags.StringSliceVarP(&s.Repositories, "repository", "r", nil, "local artifact repository")
	flags.IntVarP(&opts.workers, "workers", "w", 0, "parallel stage executions")

	maincmd.AddCommand(NewPlan(opts))
	maincmd.AddCommand(NewGraph(opts))
	maincmd.AddCommand(NewResolve(opts))
	maincmd.AddCommand(NewSetup(opts))
	return maincmd
}

func (o *Options) setupLogging() error {
	l, err := logging.ParseLevel(o.level)
	if err != nil {
		return fmt.Errorf("invalid log level %q", o.level)
	}
	logging.DefaultContext().AddRule(logging.NewConditionRule(l, logging.NewRealmPrefix("userdev")))
	return nil
}

// Config provides the effective settings.
func (o *Options) Config() (*config.Config, error) {
	cfg, err := config.Read(o.fs, o.config, o.getenv)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		cfg = &config.Config{}
	}
	env, err := config.FromEnv(o.getenv)
	if err != nil {
		return nil, err
	}
	config.Merge(cfg, env)
	config.Merge(cfg, o.explicit())
	if err := cfg.Complete(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// explicit provides the settings given on the command line.
func (o *Options) explicit() *config.Config {
	changed := func(name string, v *string) *string {
		if o.flags != nil && o.flags.Changed(name) {
			return v
		}
		return nil
	}
	s := o.settings
	cfg := &config.Config{
		Flavor:     changed("flavor", s.Flavor),
		McVersion:  changed("mc-version", s.McVersion),
		ApiVersion: changed("api-version", s.ApiVersion),
		ProjectDir: changed("project-dir", s.ProjectDir),
		BuildDir:   changed("build-dir", s.BuildDir),
		CacheDir:   changed("cache-dir", s.CacheDir),
		Mirror:     changed("mirror", s.Mirror),
		OS:         changed("os", s.OS),
	}
	if o.flags != nil && o.flags.Changed("repository") {
		cfg.Repositories = s.Repositories
	}
	if o.flags != nil && o.flags.Changed("workers") {
		cfg.Workers = generics.Pointer(o.workers)
	}
	return cfg
}

// Session creates a workspace session for the effective
// settings without configuring it.
func (o *Options) Session() (*workspace.Session, error) {
	cfg, err := o.Config()
	if err != nil {
		return nil, err
	}
	f, err := flavor.Get(*cfg.Flavor)
	if err != nil {
		return nil, err
	}
	wopts := workspace.Options{
		FS:       o.fs,
		Flavor:   f,
		Context:  cfg.Context(),
		Resolver: configurations.NewLocalRepository(cfg.Repositories, o.fs),
		Services: cfg.Services(),
		Workers:  *cfg.Workers,
		Logging:  logging.DefaultContext(),
	}
	if o.services != nil {
		wopts.Services = *o.services
	}
	return workspace.New(wopts)
}

// Configured creates a session and executes the
// configuration pass.
func (o *Options) Configured(ctx context.Context) (*workspace.Session, error) {
	s, err := o.Session()
	if err != nil {
		return nil, err
	}
	if err := s.Configure(ctx); err != nil {
		return nil, err
	}
	return s, nil
}
