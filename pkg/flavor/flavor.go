package flavor

import (
	"fmt"

	"github.com/mandelsoft/userdev/pkg/delayed"
	"github.com/mandelsoft/userdev/pkg/stages"
)

// Lifecycle hooks a flavor must provide.
const (
	HOOK_NOTATION     = "notation"
	HOOK_TOKENS       = "tokens"
	HOOK_TRANSFORMERS = "accessTransformers"
	HOOK_SETUP_CI     = "setupCI"
	HOOK_SETUP_DEV    = "setupDev"
	HOOK_SETUP_DECOMP = "setupDecomp"
)

type MissingExtensionHookError struct {
	Flavor string
	Hook   string
}

func (e *MissingExtensionHookError) Error() string {
	return fmt.Sprintf("flavor %q does not provide %s", e.Flavor, e.Hook)
}

// StageDef describes an additional stage supplied by a flavor.
type StageDef struct {
	Name      string
	DependsOn []string
	Create    func(r delayed.Resolver) stages.Stage
}

// Flavor is the configuration of a workspace kind. All extension
// points are data, a nil hook is reported by Validate.
type Flavor struct {
	Name string

	// Tokens is the placeholder table, it is combined with
	// the base tokens.
	Tokens delayed.Tokens
	// Notation provides the artifact notation group:name:version
	// of the api distribution.
	Notation func(ctx delayed.Context) string

	// AccessTransformers are path templates of the access
	// transformer files used for deobfuscation.
	AccessTransformers []string

	Stages []StageDef

	// Predecessors of the lifecycle targets.
	SetupCI     []string
	SetupDev    []string
	SetupDecomp []string
}

func (f *Flavor) Validate() error {
	missing := func(hook string) error {
		return &MissingExtensionHookError{Flavor: f.Name, Hook: hook}
	}
	switch {
	case f.Notation == nil:
		return missing(HOOK_NOTATION)
	case f.Tokens == nil:
		return missing(HOOK_TOKENS)
	case f.AccessTransformers == nil:
		return missing(HOOK_TRANSFORMERS)
	case f.SetupCI == nil:
		return missing(HOOK_SETUP_CI)
	case f.SetupDev == nil:
		return missing(HOOK_SETUP_DEV)
	case f.SetupDecomp == nil:
		return missing(HOOK_SETUP_DECOMP)
	}
	for _, s := range f.Stages {
		if s.Create == nil {
			return missing("stage " + s.Name)
		}
	}
	return nil
}

// Resolver provides the placeholder resolver of the flavor.
func (f *Flavor) Resolver() delayed.Resolver {
	return delayed.Merge(delayed.BaseTokens, f.Tokens)
}
