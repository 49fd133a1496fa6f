// Package config loads named, reusable benchmark workload profiles from
// YAML files. A profile fills in the same fields the benchmark CLI's
// flags do; flags given explicitly on the command line override the
// profile's values field by field.
//
// The embedded schema is compiled on each LoadProfile call and the
// candidate profile is validated against it before being trusted: the same two-step
// compile-then-validate shape used elsewhere in this codebase for
// validating JSON document bodies, applied here to YAML-sourced config.
package config

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

//go:embed schema.json
var schemaJSON []byte

const schemaResourceURL = "mem://workload-profile-schema.json"

// Profile is a named, reusable workload description: every field the
// benchmark CLI can also accept as a flag.
type Profile struct {
	Threads     int    `yaml:"threads" json:"threads,omitempty"`
	Ops         int    `yaml:"ops" json:"ops,omitempty"`
	KeyRange    int    `yaml:"key_range" json:"key_range,omitempty"`
	Workload    string `yaml:"workload" json:"workload,omitempty"`
	InsertPct   int    `yaml:"insert_pct" json:"insert_pct,omitempty"`
	DeletePct   int    `yaml:"delete_pct" json:"delete_pct,omitempty"`
	InitialSize int    `yaml:"initial_size" json:"initial_size,omitempty"`
	Warmup      int    `yaml:"warmup" json:"warmup,omitempty"`
}

func compileSchema() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	var doc any
	if err := json.Unmarshal(schemaJSON, &doc); err != nil {
		return nil, fmt.Errorf("config: embedded schema is invalid JSON: %w", err)
	}
	if err := compiler.AddResource(schemaResourceURL, doc); err != nil {
		return nil, fmt.Errorf("config: registering embedded schema: %w", err)
	}
	schema, err := compiler.Compile(schemaResourceURL)
	if err != nil {
		return nil, fmt.Errorf("config: compiling embedded schema: %w", err)
	}
	return schema, nil
}

// LoadProfile reads path as YAML, unmarshals it into a Profile, and
// validates the result against the embedded schema before returning it.
// Validation failures and malformed YAML both come back as a descriptive
// error rather than a zero-value Profile silently passing through.
func LoadProfile(path string) (Profile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Profile{}, fmt.Errorf("config: reading profile %s: %w", path, err)
	}

	var profile Profile
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&profile); err != nil {
		return Profile{}, fmt.Errorf("config: parsing profile %s: %w", path, err)
	}

	schema, err := compileSchema()
	if err != nil {
		return Profile{}, err
	}

	asJSON, err := json.Marshal(profile)
	if err != nil {
		return Profile{}, fmt.Errorf("config: re-encoding profile %s: %w", path, err)
	}
	var asAny any
	if err := json.Unmarshal(asJSON, &asAny); err != nil {
		return Profile{}, fmt.Errorf("config: re-decoding profile %s: %w", path, err)
	}
	if err := schema.Validate(asAny); err != nil {
		return Profile{}, fmt.Errorf("config: profile %s failed validation: %w", path, err)
	}

	if profile.InsertPct+profile.DeletePct > 100 {
		return Profile{}, fmt.Errorf("config: profile %s: insert_pct+delete_pct = %d exceeds 100", path, profile.InsertPct+profile.DeletePct)
	}

	return profile, nil
}
