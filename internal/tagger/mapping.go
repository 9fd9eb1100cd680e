package tagger

import (
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"bank-statement-consolidator/pkg/errors"
)

// Rule maps a filename substring to a bank code
type Rule struct {
	Match string `yaml:"match" mapstructure:"match" json:"match"`
	Code  string `yaml:"code" mapstructure:"code" json:"code"`
}

// Mapping is an ordered list of rules; the first rule whose substring occurs
// in a filename wins
type Mapping struct {
	Rules []Rule `json:"rules"`
}

// DefaultMapping returns the built-in account-to-bank mapping
func DefaultMapping() *Mapping {
	return &Mapping{
		Rules: []Rule{
			{Match: "422-6", Code: "3313"},
			{Match: "558-4", Code: "3314"},
		},
	}
}

// NewMapping creates a mapping from rules, keeping their order
func NewMapping(rules []Rule) (*Mapping, error) {
	m := &Mapping{Rules: make([]Rule, len(rules))}
	copy(m.Rules, rules)
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// Validate checks that every rule has a substring and a code
func (m *Mapping) Validate() error {
	if len(m.Rules) == 0 {
		return fmt.Errorf("bank mapping has no rules")
	}

	for i, rule := range m.Rules {
		if strings.TrimSpace(rule.Match) == "" {
			return fmt.Errorf("bank mapping rule %d has an empty match", i+1)
		}
		if strings.TrimSpace(rule.Code) == "" {
			return fmt.Errorf("bank mapping rule %d (%s) has an empty code", i+1, rule.Match)
		}
	}

	return nil
}

// Len returns the number of rules
func (m *Mapping) Len() int {
	return len(m.Rules)
}

// LoadMapping reads a YAML mapping of substring to bank code. Key order in
// the document is the match order:
//
//	"422-6": "3313"
//	"558-4": "3314"
func LoadMapping(r io.Reader) (*Mapping, error) {
	var doc yaml.Node
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("bank mapping is empty")
		}
		return nil, fmt.Errorf("parsing bank mapping: %w", err)
	}

	node := &doc
	if node.Kind == yaml.DocumentNode && len(node.Content) > 0 {
		node = node.Content[0]
	}
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("bank mapping must be a YAML mapping of substring to code (line %d)", node.Line)
	}

	rules := make([]Rule, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i], node.Content[i+1]
		if key.Kind != yaml.ScalarNode || value.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("bank mapping entry at line %d must map a substring to a code", key.Line)
		}
		rules = append(rules, Rule{Match: key.Value, Code: value.Value})
	}

	return NewMapping(rules)
}

// LoadMappingFile reads a YAML mapping from path
func LoadMappingFile(path string) (*Mapping, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.FileError(errors.CodeFileNotFound, path, err)
		}
		if os.IsPermission(err) {
			return nil, errors.FileError(errors.CodeFilePermission, path, err)
		}
		return nil, errors.FileError(errors.CodeDirectoryError, path, err)
	}
	defer file.Close()

	mapping, err := LoadMapping(file)
	if err != nil {
		return nil, errors.ConfigurationError(errors.CodeInvalidConfig, "bank-map", path, err)
	}
	return mapping, nil
}
