package yaml

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/invopop/jsonschema"
)

// SchemaGenerator reflects a JSON schema from a Go value, using the Go doc
// comments of the listed packages as descriptions.
// Uses [github.com/invopop/jsonschema].
type SchemaGenerator struct {
	v         any
	reflector *jsonschema.Reflector
	module    string
	packages  []string
}

// NewSchemaGenerator creates a [SchemaGenerator] for v. Packages are import
// paths within module; their sources are read relative to the working
// directory, which must be the module root.
func NewSchemaGenerator(v any, module string, packages ...string) *SchemaGenerator {
	return &SchemaGenerator{
		v:        v,
		module:   module,
		packages: packages,
		reflector: &jsonschema.Reflector{
			ExpandedStruct: true,
			DoNotReference: true,
		},
	}
}

// Generate returns the indented JSON schema.
func (g *SchemaGenerator) Generate() ([]byte, error) {
	for _, pkg := range g.packages {
		rel := strings.TrimPrefix(strings.TrimPrefix(pkg, g.module), "/")

		err := g.reflector.AddGoComments(g.module, "./"+filepath.ToSlash(rel))
		if err != nil {
			return nil, fmt.Errorf("add go comments for %s: %w", pkg, err)
		}
	}

	jss := g.reflector.Reflect(g.v)

	b, err := json.MarshalIndent(jss, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}

	return append(b, '\n'), nil
}
