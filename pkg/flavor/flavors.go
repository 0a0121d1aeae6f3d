package flavor

import (
	"fmt"
	"slices"

	"github.com/mandelsoft/goutils/maputils"

	"github.com/mandelsoft/userdev/pkg/delayed"
	"github.com/mandelsoft/userdev/pkg/stages"
)

const (
	FORGE = "forge"
	FML   = "fml"
)

var setupCI = []string{stages.GEN_SRGS, stages.DEOBFUSCATE_JAR}

func setupDev() []string {
	return append(slices.Clone(setupCI), stages.EXTRACT_NATIVES)
}

func apiTokens(name string) delayed.Tokens {
	return delayed.Tokens{
		"API_NAME":    delayed.Constant(name),
		"API_VERSION": func(c delayed.Context) string { return c.ApiVersion },
	}
}

// NewForge provides the full api flavor. The merged archive is
// patched in place before it is deobfuscated.
func NewForge() *Flavor {
	return &Flavor{
		Name:   FORGE,
		Tokens: apiTokens(FORGE),
		Notation: func(c delayed.Context) string {
			return "net.minecraftforge:forge:" + c.ApiVersion
		},
		AccessTransformers: []string{stages.FML_AT, stages.FORGE_AT},
		Stages: []StageDef{
			{
				Name:      stages.APPLY_BINPATCHES,
				DependsOn: []string{stages.MERGE_JARS, stages.EXTRACT_USERDEV},
				Create: func(r delayed.Resolver) stages.Stage {
					return &stages.ApplyBinPatches{
						InJar:   delayed.NewFile(stages.JAR_MERGED, r),
						Patches: delayed.NewFile(stages.BINPATCHES, r),
						OutJar:  delayed.NewFile(stages.JAR_MERGED, r),
					}
				},
			},
		},
		SetupCI:     slices.Clone(setupCI),
		SetupDev:    setupDev(),
		SetupDecomp: setupDev(),
	}
}

// NewFML provides the loader only flavor. It does not ship binary
// patches.
func NewFML() *Flavor {
	return &Flavor{
		Name:   FML,
		Tokens: apiTokens(FML),
		Notation: func(c delayed.Context) string {
			return "cpw.mods:fml:" + c.ApiVersion
		},
		AccessTransformers: []string{stages.FML_AT},
		Stages: []StageDef{
			{
				Name:   stages.APPLY_BINPATCHES,
				Create: func(delayed.Resolver) stages.Stage { return stages.Marker{} },
			},
		},
		SetupCI:     slices.Clone(setupCI),
		SetupDev:    setupDev(),
		SetupDecomp: setupDev(),
	}
}

type UnknownFlavorError struct {
	Name string
}

func (e *UnknownFlavorError) Error() string {
	return fmt.Sprintf("unknown flavor %q", e.Name)
}

var flavors = map[string]func() *Flavor{
	FORGE: NewForge,
	FML:   NewFML,
}

// Get provides a new instance of a known flavor.
func Get(name string) (*Flavor, error) {
	f, ok := flavors[name]
	if !ok {
		return nil, &UnknownFlavorError{name}
	}
	return f(), nil
}

func Names() []string {
	return maputils.OrderedKeys(flavors)
}
