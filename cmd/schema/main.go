// Command schema regenerates the JSON schema for the nightfeed config
// file from the struct tags in pkg/config. The result is embedded there
// and checked against the structs at verification time, so it must be
// re-run whenever config fields change.
package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/invopop/jsonschema"

	"github.com/nightfeed/nightfeed/pkg/config"
)

func main() {
	schema := jsonschema.Reflect(&config.Config{})

	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		log.Fatalf("failed to marshal schema: %v", err)
	}

	// default path assumes invocation from the repo root, go:generate in
	// pkg/config passes its own relative path
	outputPath := "pkg/config/schema.json"
	if len(os.Args) > 1 {
		outputPath = os.Args[1]
	}

	if err := os.WriteFile(outputPath, data, 0o600); err != nil { //nolint:gosec // schema file is not sensitive
		log.Fatalf("failed to write schema file: %v", err)
	}

	fmt.Printf("nightfeed config schema written to %s\n", outputPath)
}
