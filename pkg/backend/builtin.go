// pkg/backend/builtin.go
package backend

import (
	"github.com/arc-language/bulkinstall/pkg/runner"
)

// Builtin returns the command descriptions of every supported manager
func Builtin() []Spec {
	return []Spec{
		WingetSpec,
		ChocoSpec,
		ScoopSpec,
		AptSpec,
		YumSpec,
		DnfSpec,
		PacmanSpec,
		ZypperSpec,
		ApkSpec,
		SnapSpec,
		FlatpakSpec,
		BrewSpec,
		PipSpec,
		NpmSpec,
		CargoSpec,
		GoSpec,
		NixSpec,
	}
}

// NewBuiltin creates an adapter for every supported manager
func NewBuiltin(r runner.Runner, opts Options) []*Adapter {
	specs := Builtin()
	adapters := make([]*Adapter, 0, len(specs))
	for _, spec := range specs {
		adapters = append(adapters, NewAdapter(spec, r, opts))
	}
	return adapters
}
