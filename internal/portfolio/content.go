// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Folio Contributors

package portfolio

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/Masterminds/semver/v3"
	"github.com/invopop/jsonschema"
	"github.com/samber/oops"
	jschema "github.com/santhosh-tekuri/jsonschema/v6"
	"gopkg.in/yaml.v3"
)

// SupportedBundleVersions is the semver constraint a bundle's version must
// satisfy.
const SupportedBundleVersions = "^1.0"

// SchemaID is the $id of the content bundle schema.
const SchemaID = "https://folioweb.github.io/folio/schemas/content.schema.json"

//go:embed content/default.yaml
var defaultBundle []byte

// Bundle is a versioned set of portfolio content.
type Bundle struct {
	Version        string           `json:"version" yaml:"version" jsonschema:"minLength=1"`
	Education      []Education      `json:"education,omitempty" yaml:"education,omitempty"`
	Experience     []WorkExperience `json:"experience,omitempty" yaml:"experience,omitempty"`
	Projects       []Project        `json:"projects,omitempty" yaml:"projects,omitempty"`
	Certifications []Certification  `json:"certifications,omitempty" yaml:"certifications,omitempty"`
	Skills         []Skill          `json:"skills,omitempty" yaml:"skills,omitempty"`
}

// Rows returns the total number of content rows in b.
func (b *Bundle) Rows() int {
	return len(b.Education) + len(b.Experience) + len(b.Projects) + len(b.Certifications) + len(b.Skills)
}

// DefaultBundleYAML returns the embedded default bundle source.
func DefaultBundleYAML() []byte {
	return bytes.Clone(defaultBundle)
}

// DefaultBundle parses the embedded default bundle.
func DefaultBundle() (*Bundle, error) {
	return ParseBundle(defaultBundle)
}

// LoadBundle reads a bundle from path, or the embedded default when path is
// empty.
func LoadBundle(path string) (*Bundle, error) {
	if path == "" {
		return DefaultBundle()
	}
	data, err := os.ReadFile(path) //nolint:gosec // operator supplied path
	if err != nil {
		return nil, oops.Code("CONTENT_READ_FAILED").With("path", path).Wrap(err)
	}
	b, err := ParseBundle(data)
	if err != nil {
		return nil, oops.With("path", path).Wrap(err)
	}
	return b, nil
}

// ParseBundle validates data against the bundle schema, decodes it and
// checks the version. Every row is marked as default content.
func ParseBundle(data []byte) (*Bundle, error) {
	if err := ValidateSchema(data); err != nil {
		return nil, err
	}

	var b Bundle
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&b); err != nil {
		return nil, oops.Code("CONTENT_INVALID_YAML").Wrap(err)
	}

	if err := checkVersion(b.Version); err != nil {
		return nil, err
	}
	b.markDefault()
	return &b, nil
}

func checkVersion(v string) error {
	version, err := semver.NewVersion(v)
	if err != nil {
		return oops.Code("CONTENT_BAD_VERSION").With("version", v).Wrap(err)
	}
	constraint, err := semver.NewConstraint(SupportedBundleVersions)
	if err != nil {
		return oops.Code("CONTENT_BAD_VERSION").Wrap(err)
	}
	if !constraint.Check(version) {
		return oops.Code("CONTENT_UNSUPPORTED_VERSION").
			With("version", v).
			With("supported", SupportedBundleVersions).
			Errorf("bundle version %s is not supported", v)
	}
	return nil
}

func (b *Bundle) markDefault() {
	for i := range b.Education {
		b.Education[i].IsDefault = true
	}
	for i := range b.Experience {
		b.Experience[i].IsDefault = true
	}
	for i := range b.Projects {
		b.Projects[i].IsDefault = true
	}
	for i := range b.Certifications {
		b.Certifications[i].IsDefault = true
	}
	for i := range b.Skills {
		b.Skills[i].IsDefault = true
	}
}

// GenerateSchema returns the JSON schema for Bundle.
func GenerateSchema() ([]byte, error) {
	r := jsonschema.Reflector{DoNotReference: true}
	schema := r.Reflect(&Bundle{})
	schema.ID = jsonschema.ID(SchemaID)
	schema.Title = "Folio content bundle"
	schema.Description = "Default portfolio content loaded by folio seed"

	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return nil, oops.Code("CONTENT_SCHEMA_FAILED").Wrap(err)
	}
	return data, nil
}

var compiledSchema = sync.OnceValues(func() (*jschema.Schema, error) {
	raw, err := GenerateSchema()
	if err != nil {
		return nil, err
	}
	doc, err := jschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return nil, oops.Code("CONTENT_SCHEMA_FAILED").Wrap(err)
	}
	c := jschema.NewCompiler()
	if err := c.AddResource("content.schema.json", doc); err != nil {
		return nil, oops.Code("CONTENT_SCHEMA_FAILED").Wrap(err)
	}
	sch, err := c.Compile("content.schema.json")
	if err != nil {
		return nil, oops.Code("CONTENT_SCHEMA_FAILED").Wrap(err)
	}
	return sch, nil
})

// ValidateSchema checks YAML data against the bundle schema.
func ValidateSchema(data []byte) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return oops.Code("CONTENT_EMPTY").Errorf("content bundle is empty")
	}

	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return oops.Code("CONTENT_INVALID_YAML").Wrap(err)
	}

	sch, err := compiledSchema()
	if err != nil {
		return err
	}
	if err := sch.Validate(toJSONTypes(doc)); err != nil {
		return oops.Code("CONTENT_SCHEMA_INVALID").
			With("detail", FormatSchemaError(err)).
			Wrap(err)
	}
	return nil
}

// toJSONTypes rewrites YAML-decoded values into the shapes the validator
// accepts.
func toJSONTypes(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, e := range val {
			out[k] = toJSONTypes(e)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, e := range val {
			out[i] = toJSONTypes(e)
		}
		return out
	case int:
		return json.Number(strconv.Itoa(val))
	case float64:
		return val
	default:
		return val
	}
}

// FormatSchemaError trims the validator's prefix from err for display.
func FormatSchemaError(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	if i := strings.Index(msg, "\n"); i >= 0 {
		return strings.TrimSpace(msg[i+1:])
	}
	return msg
}
