// Package ruleset loads window-matching rules from YAML files, the way
// the teacher's schema loader turns a YAML document into typed Go values
// and its directory-walking config loader merges several files together.
package ruleset

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/rlch/wincond/condition"
)

// Rule pairs a parsed condition with the raw text it came from and
// whatever payload the rule file attaches (a style name, an opacity
// value — the caller decides the shape via RawData).
type Rule struct {
	Name    string         `yaml:"name"`
	Match   string         `yaml:"match"`
	RawData map[string]any `yaml:",inline"`

	Condition *condition.Condition `yaml:"-"`
}

// Document is the top-level shape of a rule file.
type Document struct {
	Rules []Rule `yaml:"rules"`
}

// Load reads and parses a single YAML rule file, compiling every rule's
// Match string into a condition tree. A rule whose Match fails to parse
// is reported via error but doesn't stop the rest of the file loading —
// the returned slice holds every rule that did parse.
func Load(path string) ([]Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("ruleset: reading %s: %w", path, err)
	}
	return Parse(data, path)
}

// Parse parses a YAML rule document already in memory. path is used only
// to annotate error messages and parser position info.
func Parse(data []byte, path string) ([]Rule, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("ruleset: parsing %s: %w", path, err)
	}

	var errs []error
	rules := make([]Rule, 0, len(doc.Rules))
	for i := range doc.Rules {
		r := doc.Rules[i]
		cond, err := condition.Parse(r.Match, condition.WithFilename(path))
		if err != nil {
			errs = append(errs, fmt.Errorf("ruleset: rule %d (%s) in %s: %w", i, r.Name, path, err))
			continue
		}
		cond.Data = r.RawData
		r.Condition = cond
		rules = append(rules, r)
	}

	if len(errs) > 0 {
		return rules, fmt.Errorf("ruleset: %d rule(s) failed to parse: %w", len(errs), errs[0])
	}
	return rules, nil
}

// LoadAll loads and concatenates every file in paths, in order, stopping
// at the first file that can't be read or parsed at all (a bad Match
// string in one rule still lets the rest of that file's rules through,
// per Load/Parse).
func LoadAll(paths []string) ([]Rule, error) {
	var all []Rule
	for _, p := range paths {
		rules, err := Load(p)
		all = append(all, rules...)
		if err != nil {
			return all, err
		}
	}
	return all, nil
}

// Merge concatenates rule slices from multiple sources, later slices
// taking priority — appended last means evaluated last by a caller that
// walks the slice in order and stops at the first match, the priority
// convention most window-rule engines use.
func Merge(groups ...[]Rule) []Rule {
	var out []Rule
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}
