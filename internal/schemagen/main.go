// Command schemagen writes the JSON schema for the Settings kind.
package main

import (
	"log"
	"os"

	flag "github.com/spf13/pflag"

	"github.com/macropower/notemover/api/v1beta1/settings"
	"github.com/macropower/notemover/pkg/yaml"
)

const module = "github.com/macropower/notemover"

var (
	outFile = flag.StringP("out", "o", "schema.json", "Output file for the generated schema, relative to --root")
	rootDir = flag.String("root", ".", "Module root, used to read Go doc comments")
)

func main() {
	flag.Parse()

	err := os.Chdir(*rootDir)
	if err != nil {
		log.Fatalf("change to module root: %v", err)
	}

	gen := yaml.NewSchemaGenerator(settings.New(), module,
		module+"/api/v1beta1",
		module+"/api/v1beta1/settings",
		module+"/pkg/exclusion",
		module+"/pkg/migrate",
		module+"/pkg/rule",
	)

	jsData, err := gen.Generate()
	if err != nil {
		log.Fatalf("generate JSON schema: %v", err)
	}

	err = os.WriteFile(*outFile, jsData, 0o600)
	if err != nil {
		log.Fatalf("write schema file: %v", err)
	}
}
