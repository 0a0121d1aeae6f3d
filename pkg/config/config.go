package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/drone/envsubst"
	"github.com/mandelsoft/goutils/generics"
	"github.com/mandelsoft/logging"
	"github.com/mandelsoft/vfs/pkg/vfs"
	"sigs.k8s.io/yaml"

	"github.com/mandelsoft/userdev/pkg/delayed"
	"github.com/mandelsoft/userdev/pkg/flavor"
	"github.com/mandelsoft/userdev/pkg/stages"
	"github.com/mandelsoft/userdev/pkg/utils"
)

var REALM = logging.DefineRealm("userdev/config", "workspace configuration file")

var log = logging.DynamicLogger(logging.DefaultContext(), REALM)

const (
	DEFAULT_FLAVOR  = flavor.FORGE
	DEFAULT_MIRROR  = "https://s3.amazonaws.com/Minecraft.Download"
	DEFAULT_WORKERS = 4

	ENV_PREFIX = "USERDEV_"
)

// Config describes a workspace. All fields are optional in a
// file, Complete provides the defaults.
type Config struct {
	Flavor       *string  `json:"flavor,omitempty"`
	McVersion    *string  `json:"mcVersion,omitempty"`
	ApiVersion   *string  `json:"apiVersion,omitempty"`
	ProjectDir   *string  `json:"projectDir,omitempty"`
	BuildDir     *string  `json:"buildDir,omitempty"`
	CacheDir     *string  `json:"cacheDir,omitempty"`
	Mirror       *string  `json:"mirror,omitempty"`
	OS           *string  `json:"os,omitempty"`
	Workers      *int     `json:"workers,omitempty"`
	Repositories []string `json:"repositories,omitempty"`

	// Remapper and Patcher are command lines of external
	// tools, see stages.Command.
	Remapper []string `json:"remapper,omitempty"`
	Patcher  []string `json:"patcher,omitempty"`
}

// Parse decodes a config document. ${VAR} references are
// substituted before decoding.
func Parse(data []byte, getenv func(string) string) (*Config, error) {
	if getenv == nil {
		getenv = os.Getenv
	}
	s, err := envsubst.Eval(string(data), getenv)
	if err != nil {
		return nil, fmt.Errorf("substitution: %w", err)
	}
	var cfg Config
	if err := yaml.UnmarshalStrict([]byte(s), &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Read reads a config file. A non-existing file provides
// no config and no error.
func Read(fs vfs.FileSystem, path string, getenv func(string) string) (*Config, error) {
	data, err := vfs.ReadFile(fs, path)
	if err != nil {
		if errors.Is(err, vfs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	cfg, err := Parse(data, getenv)
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	log.Debug("read config {{path}}", "path", path)
	return cfg, nil
}

// FromEnv provides the config given by USERDEV_* environment
// variables. Repositories are separated by the path list
// separator.
func FromEnv(getenv func(string) string) (*Config, error) {
	if getenv == nil {
		getenv = os.Getenv
	}
	str := func(name string) *string {
		if v := getenv(ENV_PREFIX + name); v != "" {
			return generics.Pointer(v)
		}
		return nil
	}
	cfg := &Config{
		Flavor:     str("FLAVOR"),
		McVersion:  str("MC_VERSION"),
		ApiVersion: str("API_VERSION"),
		ProjectDir: str("PROJECT_DIR"),
		BuildDir:   str("BUILD_DIR"),
		CacheDir:   str("CACHE_DIR"),
		Mirror:     str("MIRROR"),
		OS:         str("OS"),
	}
	if v := str("WORKERS"); v != nil {
		n, err := strconv.Atoi(*v)
		if err != nil {
			return nil, fmt.Errorf("%sWORKERS: %w", ENV_PREFIX, err)
		}
		cfg.Workers = &n
	}
	if v := str("REPOSITORIES"); v != nil {
		cfg.Repositories = filepath.SplitList(*v)
	}
	return cfg, nil
}

// Merge overwrites the fields of cfg with the fields set in add.
func Merge(cfg *Config, add *Config) {
	if add == nil {
		return
	}
	set := func(dst **string, src *string) {
		if src != nil {
			*dst = src
		}
	}
	set(&cfg.Flavor, add.Flavor)
	set(&cfg.McVersion, add.McVersion)
	set(&cfg.ApiVersion, add.ApiVersion)
	set(&cfg.ProjectDir, add.ProjectDir)
	set(&cfg.BuildDir, add.BuildDir)
	set(&cfg.CacheDir, add.CacheDir)
	set(&cfg.Mirror, add.Mirror)
	set(&cfg.OS, add.OS)
	if add.Workers != nil {
		cfg.Workers = add.Workers
	}
	if add.Repositories != nil {
		cfg.Repositories = add.Repositories
	}
	if add.Remapper != nil {
		cfg.Remapper = add.Remapper
	}
	if add.Patcher != nil {
		cfg.Patcher = add.Patcher
	}
}

// Complete validates the config and fills in defaults.
func (c *Config) Complete() error {
	def := func(f **string, v string) {
		if *f == nil || strings.TrimSpace(**f) == "" {
			*f = generics.Pointer(v)
		}
	}
	def(&c.Flavor, DEFAULT_FLAVOR)
	def(&c.ProjectDir, ".")
	def(&c.BuildDir, filepath.Join(*c.ProjectDir, "build"))
	def(&c.CacheDir, filepath.Join(*c.ProjectDir, ".userdev", "caches"))
	def(&c.Mirror, DEFAULT_MIRROR)
	def(&c.OS, HostOS())
	if c.Workers == nil || *c.Workers <= 0 {
		c.Workers = generics.Pointer(DEFAULT_WORKERS)
	}
	if len(c.Repositories) == 0 {
		c.Repositories = []string{filepath.Join(*c.CacheDir, "repository")}
	}

	if _, err := flavor.Get(*c.Flavor); err != nil {
		return err
	}
	if c.ApiVersion == nil || *c.ApiVersion == "" {
		return fmt.Errorf("apiVersion required")
	}
	if c.McVersion != nil && *c.McVersion != "" {
		if _, err := semver.NewVersion(*c.McVersion); err != nil {
			return fmt.Errorf("invalid mcVersion %q: %w", *c.McVersion, err)
		}
	}
	return nil
}

// HostOS maps the runtime OS to the names used by
// manifest rules.
func HostOS() string {
	if runtime.GOOS == "darwin" {
		return "osx"
	}
	return runtime.GOOS
}

// Context provides the context snapshot for a completed config.
func (c *Config) Context() delayed.Context {
	return delayed.Context{
		ProjectDir: utils.Deref(c.ProjectDir),
		BuildDir:   utils.Deref(c.BuildDir),
		CacheDir:   utils.Deref(c.CacheDir),
		McVersion:  utils.Deref(c.McVersion),
		ApiVersion: utils.Deref(c.ApiVersion),
		OS:         utils.Deref(c.OS),
		Extra:      map[string]string{"MIRROR": utils.Deref(c.Mirror)},
	}
}

// Services provides the external tools configured by
// command lines.
func (c *Config) Services() stages.Services {
	var s stages.Services
	if len(c.Remapper) > 0 {
		s.Remapper = &stages.Command{Args: c.Remapper, Dir: utils.Deref(c.ProjectDir)}
	}
	if len(c.Patcher) > 0 {
		s.Patcher = &stages.Command{Args: c.Patcher, Dir: utils.Deref(c.ProjectDir)}
	}
	return s
}
