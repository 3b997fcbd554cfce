package main

import (
	"bufio"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/albertus-andito/fake-news-detection/internal/core/model"
)

// triplesDocument is the file form of a triple list. A bare YAML list is
// accepted too.
type triplesDocument struct {
	Triples []model.Triple `yaml:"triples"`
}

func parseTriples(data []byte) ([]model.Triple, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, fmt.Errorf("parsing triples: %w", err)
	}
	if len(node.Content) == 0 {
		return nil, fmt.Errorf("parsing triples: empty document")
	}

	var triples []model.Triple
	root := node.Content[0]
	switch root.Kind {
	case yaml.SequenceNode:
		if err := root.Decode(&triples); err != nil {
			return nil, fmt.Errorf("parsing triples: %w", err)
		}
	case yaml.MappingNode:
		var doc triplesDocument
		if err := root.Decode(&doc); err != nil {
			return nil, fmt.Errorf("parsing triples: %w", err)
		}
		triples = doc.Triples
	default:
		return nil, fmt.Errorf("parsing triples: expected a list or a mapping with a triples key")
	}

	if len(triples) == 0 {
		return nil, fmt.Errorf("parsing triples: no triples found")
	}
	for i, t := range triples {
		if err := t.Validate(); err != nil {
			return nil, fmt.Errorf("triple %d: %w", i, err)
		}
	}
	return triples, nil
}

func readAnswer(r io.Reader) bool {
	answer, _ := bufio.NewReader(r).ReadString('\n')
	answer = trimLower(answer)
	return answer == "y" || answer == "yes"
}
