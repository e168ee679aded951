package loader

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/vocabsearch/internal/domain/document"
)

// record is the wire form of one vocabulary description.
type record struct {
	ID               string             `json:"id" yaml:"id"`
	Title            string             `json:"title" yaml:"title"`
	Description      string             `json:"description" yaml:"description"`
	About            stringList         `json:"about" yaml:"about"`
	EducationalLevel stringList         `json:"educationalLevel" yaml:"educationalLevel"`
	Identifier       stringList         `json:"identifier" yaml:"identifier"`
	Tag              stringList         `json:"tag" yaml:"tag"`
	Type             stringList         `json:"type" yaml:"type"`
	Numerics         map[string]float64 `json:"numerics" yaml:"numerics"`
}

func (r *record) toDocument(cleaner htmlCleaner) (document.Document, error) {
	return document.New(
		r.ID,
		cleaner.Clean(r.Title),
		cleaner.Clean(r.Description),
		document.Facets{
			About:            r.About,
			EducationalLevel: r.EducationalLevel,
			Identifier:       r.Identifier,
			Tag:              r.Tag,
		},
		r.Type,
		r.Numerics,
	)
}

// stringList accepts either a single string or a list of strings.
type stringList []string

func (l *stringList) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*l = nil
		return nil
	}
	var one string
	if err := json.Unmarshal(data, &one); err == nil {
		*l = stringList{one}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return fmt.Errorf("expected string or list of strings: %w", err)
	}
	*l = many
	return nil
}

func (l *stringList) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		if node.Tag == "!!null" {
			*l = nil
			return nil
		}
		*l = stringList{node.Value}
		return nil
	case yaml.SequenceNode:
		var many []string
		if err := node.Decode(&many); err != nil {
			return err
		}
		*l = many
		return nil
	}
	return fmt.Errorf("line %d: expected string or list of strings", node.Line)
}
