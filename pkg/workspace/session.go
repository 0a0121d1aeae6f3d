package workspace

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/mandelsoft/logging"
	"github.com/mandelsoft/vfs/pkg/osfs"
	"github.com/mandelsoft/vfs/pkg/vfs"

	"github.com/mandelsoft/userdev/pkg/configurations"
	"github.com/mandelsoft/userdev/pkg/delayed"
	"github.com/mandelsoft/userdev/pkg/flavor"
	"github.com/mandelsoft/userdev/pkg/stages"
	"github.com/mandelsoft/userdev/pkg/taskgraph"
	"github.com/mandelsoft/userdev/pkg/userjson"
	"github.com/mandelsoft/userdev/pkg/utils"
)

var REALM = logging.DefineRealm("userdev/workspace", "workspace configuration")

// Configuration slots.
const (
	CONFIG         = "minecraft"
	CONFIG_NATIVES = "minecraftNatives"
	CONFIG_USERDEV = "userDevPackageDepConfig"
)

// Lifecycle targets.
const (
	SETUP_CI     = "setupCIWorkspace"
	SETUP_DEV    = "setupDevWorkspace"
	SETUP_DECOMP = "setupDecompWorkspace"
)

const USERDEV_CLASSIFIER = "userdev"

type Options struct {
	FS       vfs.FileSystem
	Flavor   *flavor.Flavor
	Context  delayed.Context
	Resolver configurations.Resolver
	Services stages.Services
	Workers  int
	Logging  logging.Context
}

// Session configures a single workspace. Configuration steps
// must be executed in the order given by the session states,
// a failed step leaves the session in state Failed.
type Session struct {
	lock  sync.Mutex
	id    string
	state State
	err   error
	ctx   delayed.Context

	fs       vfs.FileSystem
	flavor   *flavor.Flavor
	resolver delayed.Resolver
	registry *configurations.Registry
	graph    *taskgraph.Graph
	env      *stages.Env
	log      logging.Logger

	stages   map[string]stages.Stage
	deps     map[string][]string
	manifest *userjson.Manifest
	extract  *stages.Extract
	natives  *stages.ExtractNatives
}

func New(opts Options) (*Session, error) {
	if opts.Flavor == nil {
		return nil, &flavor.MissingExtensionHookError{Hook: "flavor"}
	}
	if err := opts.Flavor.Validate(); err != nil {
		return nil, err
	}
	lctx := opts.Logging
	if lctx == nil {
		lctx = logging.DefaultContext()
	}

	s := &Session{
		id:       uuid.New().String(),
		state:    Unconfigured,
		ctx:      opts.Context,
		fs:       utils.OptionalDefaulted(vfs.FileSystem(osfs.OsFs), opts.FS),
		flavor:   opts.Flavor,
		resolver: opts.Flavor.Resolver(),
		registry: configurations.NewRegistry(opts.Resolver),
		graph:    taskgraph.New(lctx, opts.Workers),
		stages:   map[string]stages.Stage{},
		deps:     map[string][]string{},
	}
	s.log = lctx.Logger(REALM).WithValues("session", s.id, "flavor", opts.Flavor.Name)
	s.env = &stages.Env{
		FS:       s.fs,
		Context:  s.Context,
		Registry: s.registry,
		Services: opts.Services,
	}
	return s, nil
}

func (s *Session) ID() string {
	return s.id
}

func (s *Session) Flavor() *flavor.Flavor {
	return s.flavor
}

func (s *Session) Registry() *configurations.Registry {
	return s.registry
}

func (s *Session) Graph() *taskgraph.Graph {
	return s.graph
}

func (s *Session) Resolver() delayed.Resolver {
	return s.resolver
}

// Stage returns the stage of a declared task.
func (s *Session) Stage(name string) stages.Stage {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.stages[name]
}

// State returns the current state and the error which
// caused a failed state.
func (s *Session) State() (State, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.state, s.err
}

// Context returns the current context snapshot.
func (s *Session) Context() delayed.Context {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.ctx
}

// UpdateContext replaces the context snapshot. This is only
// possible before the stages are linked.
func (s *Session) UpdateContext(mod func(c *delayed.Context)) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.state >= StagesLinked {
		return &InvalidStateError{Operation: "context update", State: s.state, Expected: ManifestAppliedAuthoritative}
	}
	s.ctx = s.ctx.With(mod)
	return nil
}

// Manifest returns the last applied manifest.
func (s *Session) Manifest() *userjson.Manifest {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.manifest
}

func (s *Session) DelayedFile(template string) delayed.File {
	return delayed.NewFile(template, s.resolver)
}

func (s *Session) DelayedString(template string) delayed.String {
	return delayed.NewString(template, s.resolver)
}

// transition checks the current state for an operation. The
// operation is executed without holding the lock. On success
// the session moves to the target state, an error moves it to
// state Failed.
func (s *Session) transition(op string, from, to State, f func() error) error {
	s.lock.Lock()
	if s.state != from {
		err := &InvalidStateError{Operation: op, State: s.state, Expected: from}
		s.lock.Unlock()
		return err
	}
	s.lock.Unlock()

	if err := f(); err != nil {
		return s.fail(op, err)
	}

	s.lock.Lock()
	defer s.lock.Unlock()
	s.state = to
	s.log.Debug("session state {{state}}", "state", to)
	return nil
}

func (s *Session) fail(op string, err error) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.log.Error("{{operation}} failed", "operation", op, "error", err)
	s.state = Failed
	s.err = err
	return fmt.Errorf("%s: %w", op, err)
}

////////////////////////////////////////////////////////////////////////////////

// Setup creates the configuration slots and declares the tasks.
// Predecessors are wired by Link.
func (s *Session) Setup() error {
	return s.transition("setup", Unconfigured, SlotsCreated, func() error {
		for _, n := range []string{CONFIG_USERDEV, CONFIG_NATIVES, CONFIG} {
			if err := s.registry.CreateSlot(n); err != nil {
				return err
			}
		}
		return s.declare()
	})
}

func (s *Session) declare() error {
	s.extract = &stages.Extract{Into: delayed.NewFileTree(stages.PACK_DIR, s.resolver)}
	t, err := s.register(stages.EXTRACT_USERDEV, s.extract)
	if err != nil {
		return err
	}
	t.DoLast(func(ctx context.Context, _ *taskgraph.Task) error {
		return s.applyAuthoritative()
	})

	if _, err := s.register(stages.DOWNLOAD_CLIENT, &stages.Download{
		URL:    s.DelayedString(stages.MC_JAR_URL),
		OutJar: s.DelayedFile(stages.JAR_CLIENT_FRESH),
	}); err != nil {
		return err
	}
	if _, err := s.register(stages.DOWNLOAD_SERVER, &stages.Download{
		URL:    s.DelayedString(stages.MC_SERVER_URL),
		OutJar: s.DelayedFile(stages.JAR_SERVER_FRESH),
	}); err != nil {
		return err
	}
	if _, err := s.register(stages.DOWNLOAD_MCPTOOLS, &stages.Download{
		URL:    s.DelayedString(stages.EXCEPTOR_URL),
		OutJar: s.DelayedFile(stages.EXCEPTOR),
	}); err != nil {
		return err
	}

	if _, err := s.register(stages.MERGE_JARS, &stages.MergeJars{
		Client:   s.DelayedFile(stages.JAR_CLIENT_FRESH),
		Server:   s.DelayedFile(stages.JAR_SERVER_FRESH),
		MergeCfg: s.DelayedFile(stages.MERGE_CFG),
		OutJar:   s.DelayedFile(stages.JAR_MERGED),
	}, stages.DOWNLOAD_CLIENT, stages.DOWNLOAD_SERVER, stages.EXTRACT_USERDEV); err != nil {
		return err
	}

	if _, err := s.register(stages.GEN_SRGS, &stages.GenSrgs{
		InSrg:      s.DelayedFile(stages.PACKAGED_SRG),
		MethodsCsv: s.DelayedFile(stages.METHOD_CSV),
		FieldsCsv:  s.DelayedFile(stages.FIELD_CSV),
		DeobfSrg:   s.DelayedFile(stages.DEOBF_SRG),
		ReobfSrg:   s.DelayedFile(stages.REOBF_SRG),
	}, stages.EXTRACT_USERDEV); err != nil {
		return err
	}

	deobf := &stages.ProcessJar{
		InJar:       s.DelayedFile(stages.JAR_MERGED),
		ExceptorJar: s.DelayedFile(stages.EXCEPTOR),
		Srg:         s.DelayedFile(stages.PACKAGED_SRG),
		ExceptorCfg: s.DelayedFile(stages.PACKAGED_EXC),
		OutCleanJar: s.DelayedFile(stages.JAR_SRG),
	}
	for _, at := range s.flavor.AccessTransformers {
		deobf.AddTransformers(s.DelayedFile(at))
	}
	if _, err := s.register(stages.DEOBFUSCATE_JAR, deobf,
		stages.DOWNLOAD_MCPTOOLS, stages.MERGE_JARS, stages.APPLY_BINPATCHES, stages.GEN_SRGS); err != nil {
		return err
	}

	s.natives = &stages.ExtractNatives{
		Slot: CONFIG_NATIVES,
		Into: delayed.NewFileTree(stages.NATIVES_DIR, s.resolver),
	}
	if _, err := s.register(stages.EXTRACT_NATIVES, s.natives, stages.EXTRACT_USERDEV); err != nil {
		return err
	}

	for _, def := range s.flavor.Stages {
		if _, err := s.register(def.Name, def.Create(s.resolver), def.DependsOn...); err != nil {
			return err
		}
	}

	for name, deps := range map[string][]string{
		SETUP_CI:     s.flavor.SetupCI,
		SETUP_DEV:    s.flavor.SetupDev,
		SETUP_DECOMP: s.flavor.SetupDecomp,
	} {
		if _, err := s.graph.CreateTask(name, "Lifecycle"); err != nil {
			return err
		}
		s.deps[name] = deps
	}
	return nil
}

func (s *Session) register(name string, stage stages.Stage, deps ...string) (*taskgraph.Task, error) {
	t, err := stages.Register(s.graph, name, stage, s.env)
	if err != nil {
		return nil, err
	}
	s.stages[name] = stage
	s.deps[name] = deps
	return t, nil
}

////////////////////////////////////////////////////////////////////////////////

// ApplyManifest loads the manifest of the distribution and adds
// its libraries to the configuration slots. In best-effort mode
// a missing manifest is accepted, in authoritative mode it is an
// error.
func (s *Session) ApplyManifest(mode userjson.Mode) error {
	switch mode {
	case userjson.BestEffort:
		return s.transition("best-effort manifest application", SlotsCreated, ManifestAppliedBestEffort, func() error {
			return s.applyManifest(mode)
		})
	default:
		return s.transition("authoritative manifest application", DependenciesResolved, ManifestAppliedAuthoritative, func() error {
			return s.applyManifest(mode)
		})
	}
}

// applyAuthoritative is executed after the distribution has been
// extracted. Later executions re-apply the manifest, which keeps
// the slots unchanged for an unchanged manifest.
func (s *Session) applyAuthoritative() error {
	state, _ := s.State()
	switch {
	case state == DependenciesResolved:
		return s.ApplyManifest(userjson.Authoritative)
	case state > DependenciesResolved && state != Failed:
		return s.applyManifest(userjson.Authoritative)
	default:
		return &InvalidStateError{Operation: "authoritative manifest application", State: state, Expected: DependenciesResolved}
	}
}

func (s *Session) applyManifest(mode userjson.Mode) error {
	ctx := s.Context()
	path := s.DelayedFile(stages.JSON).Resolve(ctx)
	m, err := userjson.Load(s.fs, path, mode)
	if err != nil {
		return err
	}
	if m == nil {
		s.log.Info("no manifest found at {{path}}", "path", path)
		return nil
	}
	if err := m.Apply(s.registry, CONFIG, CONFIG_NATIVES, ctx.OS); err != nil {
		return err
	}
	for _, e := range m.Entries(ctx.OS) {
		if e.Native {
			s.natives.AddExcludes(e.Exclude...)
		}
	}
	s.log.Info("applied {{mode}} manifest {{id}}", "mode", mode, "id", m.ID)

	s.lock.Lock()
	s.manifest = m
	if s.ctx.McVersion == "" && m.InheritsFrom != "" && s.state < StagesLinked {
		s.ctx = s.ctx.With(func(c *delayed.Context) { c.McVersion = m.InheritsFrom })
	}
	s.lock.Unlock()
	return nil
}

// ResolveDependencies adds the distribution artifact of the
// flavor to its slot, resolves it and binds the source of the
// extraction stage.
func (s *Session) ResolveDependencies(ctx context.Context) error {
	return s.transition("dependency resolution", ManifestAppliedBestEffort, DependenciesResolved, func() error {
		notation := s.flavor.Notation(s.Context()) + ":" + USERDEV_CLASSIFIER
		if err := s.registry.AddCoordinate(CONFIG_USERDEV, notation); err != nil {
			return err
		}
		file, err := s.registry.SingleFile(ctx, CONFIG_USERDEV)
		if err != nil {
			return err
		}
		s.log.Info("using distribution {{file}}", "file", file)
		s.extract.From = delayed.NewFile(file, nil)
		return nil
	})
}

// Link wires the predecessors of all declared tasks and
// validates the resulting graph.
func (s *Session) Link() error {
	return s.transition("stage linking", ManifestAppliedAuthoritative, StagesLinked, func() error {
		for name, deps := range s.deps {
			s.graph.Task(name).DependsOn(deps...)
		}
		if err := s.graph.Validate(); err != nil {
			return err
		}
		return s.checkProducers()
	})
}

// Finalize marks a linked session as ready.
func (s *Session) Finalize() error {
	return s.transition("finalization", StagesLinked, Ready, func() error { return nil })
}

// Configure executes the complete configuration pass. The
// distribution is extracted on the way, to make the manifest
// available for the authoritative application.
func (s *Session) Configure(ctx context.Context) error {
	if state, _ := s.State(); state == Unconfigured {
		if err := s.Setup(); err != nil {
			return err
		}
	}
	if err := s.ApplyManifest(userjson.BestEffort); err != nil {
		return err
	}
	if err := s.ResolveDependencies(ctx); err != nil {
		return err
	}
	if _, err := s.graph.Run(ctx, stages.EXTRACT_USERDEV); err != nil {
		if state, _ := s.State(); state != Failed {
			return s.fail("distribution extraction", err)
		}
		return err
	}
	if err := s.Link(); err != nil {
		return err
	}
	return s.Finalize()
}

// Run realizes the given targets with all their predecessors.
func (s *Session) Run(ctx context.Context, targets ...string) (*taskgraph.Result, error) {
	if err := s.require("execution", Ready); err != nil {
		return nil, err
	}
	return s.graph.Run(ctx, targets...)
}

// Plan provides the execution order for the given targets.
func (s *Session) Plan(targets ...string) ([]string, error) {
	if err := s.require("planning", Ready); err != nil {
		return nil, err
	}
	return s.graph.Order(targets...)
}

func (s *Session) require(op string, state State) error {
	cur, err := s.State()
	if cur != state {
		if err != nil {
			return errors.Join(&InvalidStateError{Operation: op, State: cur, Expected: state}, err)
		}
		return &InvalidStateError{Operation: op, State: cur, Expected: state}
	}
	return nil
}
