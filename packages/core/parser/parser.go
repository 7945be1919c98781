package parser

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

// Spec is a parsed page-check spec file.
type Spec struct {
	Pages []*PageSpec `yaml:"pages" json:"pages"`
}

// PageSpec describes one document and the checks to run against it.
// Exactly one of URL and File is set.
type PageSpec struct {
	Name   string   `yaml:"name" json:"name"`
	URL    string   `yaml:"url,omitempty" json:"url,omitempty"`
	File   string   `yaml:"file,omitempty" json:"file,omitempty"`
	Checks []*Check `yaml:"checks" json:"checks"`
}

// Check is one declarative assertion: a locator kind, count constraints and
// overlays. Negated checks assert absence.
type Check struct {
	Kind    string            `yaml:"kind" json:"kind"`
	Locator string            `yaml:"locator" json:"locator"`
	Count   *int              `yaml:"count,omitempty" json:"count,omitempty"`
	Minimum *int              `yaml:"minimum,omitempty" json:"minimum,omitempty"`
	Maximum *int              `yaml:"maximum,omitempty" json:"maximum,omitempty"`
	Between []int             `yaml:"between,omitempty" json:"between,omitempty"`
	WaitMs  *int              `yaml:"wait,omitempty" json:"wait,omitempty"`
	Negated bool              `yaml:"negated,omitempty" json:"negated,omitempty"`
	Text    string            `yaml:"text,omitempty" json:"text,omitempty"`
	Checked *bool             `yaml:"checked,omitempty" json:"checked,omitempty"`
	Attrs   map[string]string `yaml:"attrs,omitempty" json:"attrs,omitempty"`
}

// Describe renders the check for report lines, e.g. `no css ".spinner"`.
func (c *Check) Describe() string {
	var sb strings.Builder
	if c.Negated {
		sb.WriteString("no ")
	}
	fmt.Fprintf(&sb, "%s %q", c.Kind, c.Locator)
	return sb.String()
}

// ParseFile reads, validates and decodes a spec file. Unknown keys and
// malformed values are load-time errors; a spec that parses is structurally
// sound before any document is fetched.
func ParseFile(path string) (*Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read spec file: %w", err)
	}
	spec, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return spec, nil
}

// Parse validates raw YAML against the spec schema and decodes it.
func Parse(data []byte) (*Spec, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("invalid YAML: %w", err)
	}

	if err := validateSchema(raw); err != nil {
		return nil, err
	}

	var spec Spec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("failed to decode spec: %w", err)
	}

	for _, page := range spec.Pages {
		if (page.URL == "") == (page.File == "") {
			return nil, fmt.Errorf("page %q must set exactly one of url and file", page.Name)
		}
	}
	return &spec, nil
}

func validateSchema(raw any) error {
	// gojsonschema validates JSON documents; the decoded YAML round-trips
	// through json.Marshal to get there.
	doc, err := json.Marshal(raw)
	if err != nil {
		return fmt.Errorf("failed to convert spec to JSON: %w", err)
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(specSchema),
		gojsonschema.NewBytesLoader(doc),
	)
	if err != nil {
		return fmt.Errorf("schema validation error: %w", err)
	}
	if result.Valid() {
		return nil
	}

	var problems []string
	for _, desc := range result.Errors() {
		problems = append(problems, desc.String())
	}
	return fmt.Errorf("invalid spec: %s", strings.Join(problems, "; "))
}
