// Package tagger derives the bank code of a statement from its filename.
package tagger

import (
	"strings"

	"golang.org/x/text/unicode/norm"

	"bank-statement-consolidator/pkg/logger"
)

// Tag is the bank code assigned to one file
type Tag struct {
	Code string `json:"code"`
	// Match is the substring that selected the code, empty on fallback
	Match    string `json:"match,omitempty"`
	Fallback bool   `json:"fallback"`
}

// Tagger assigns bank codes from an ordered mapping
type Tagger struct {
	mapping *Mapping
	logger  logger.Logger
}

// New creates a Tagger. A nil mapping uses DefaultMapping.
func New(mapping *Mapping) *Tagger {
	if mapping == nil {
		mapping = DefaultMapping()
	}
	return &Tagger{
		mapping: mapping,
		logger:  logger.WithComponent("tagger"),
	}
}

// Mapping returns the rules in use
func (t *Tagger) Mapping() *Mapping {
	return t.mapping
}

// Tag returns the code of the first rule whose substring occurs in filename,
// or the fallback code when none does
func (t *Tagger) Tag(filename string) Tag {
	name := norm.NFC.String(filename)

	for _, rule := range t.mapping.Rules {
		if strings.Contains(name, norm.NFC.String(rule.Match)) {
			return Tag{Code: rule.Code, Match: rule.Match}
		}
	}

	code := FallbackCode(name)
	t.logger.WithFields(logger.Fields{
		"file": filename,
		"code": code,
	}).Info("No bank mapping matched, using filename prefix as bank code")

	return Tag{Code: code, Fallback: true}
}

// FallbackCode takes the filename up to the first space, then up to the
// first underscore. Unrelated files sharing a prefix get the same code.
func FallbackCode(filename string) string {
	token, _, _ := strings.Cut(filename, " ")
	token, _, _ = strings.Cut(token, "_")
	return token
}
