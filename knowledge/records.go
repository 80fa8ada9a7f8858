// Package knowledge holds the case library and policy corpus records and loads
// them into vector indexes.
package knowledge

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// DocumentStore supplies the records the knowledge base is built from.
type DocumentStore interface {
	Cases(ctx context.Context) ([]CaseRecord, error)
	Policies(ctx context.Context) ([]PolicyRecord, error)
}

// CaseRecord is a previously solved governance case.
type CaseRecord struct {
	ID         string     `json:"id" yaml:"id"`
	Title      string     `json:"title" yaml:"title"`
	Category   string     `json:"category" yaml:"category"`
	Problem    string     `json:"problem" yaml:"problem"`
	Steps      StringList `json:"steps" yaml:"steps"`
	Result     string     `json:"result" yaml:"result"`
	Reflection string     `json:"reflection" yaml:"reflection"`
	Keywords   StringList `json:"keywords" yaml:"keywords"`
	Source     string     `json:"source,omitempty" yaml:"source,omitempty"`
}

// PolicyRecord is one policy or regulation document.
type PolicyRecord struct {
	ID         string `json:"id" yaml:"id"`
	Title      string `json:"title" yaml:"title"`
	AdminLevel string `json:"admin_level,omitempty" yaml:"admin_level,omitempty"`
	Region     string `json:"region,omitempty" yaml:"region,omitempty"`
	Authority  string `json:"authority,omitempty" yaml:"authority,omitempty"`
	Source     string `json:"source,omitempty" yaml:"source,omitempty"`
	Year       int    `json:"year,omitempty" yaml:"year,omitempty"`
	Content    string `json:"content" yaml:"content"`
}

// StringList accepts either a list of strings or a single string.
// A single string is split on newlines, semicolons and commas.
type StringList []string

func (l *StringList) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*l = list
		return nil
	}
	var single string
	if err := json.Unmarshal(data, &single); err != nil {
		return fmt.Errorf("expected string or list of strings: %w", err)
	}
	*l = splitList(single)
	return nil
}

func (l *StringList) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.SequenceNode:
		var list []string
		if err := node.Decode(&list); err != nil {
			return err
		}
		*l = list
	case yaml.ScalarNode:
		*l = splitList(node.Value)
	default:
		return fmt.Errorf("line %d: expected string or list of strings", node.Line)
	}
	return nil
}

func splitList(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == '\n' || r == ';' || r == '；' || r == ',' || r == '，'
	})
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

// MemoryStore is a DocumentStore over fixed record slices.
type MemoryStore struct {
	CaseRecords   []CaseRecord
	PolicyRecords []PolicyRecord
}

func (m *MemoryStore) Cases(context.Context) ([]CaseRecord, error) {
	return append([]CaseRecord(nil), m.CaseRecords...), nil
}

func (m *MemoryStore) Policies(context.Context) ([]PolicyRecord, error) {
	return append([]PolicyRecord(nil), m.PolicyRecords...), nil
}
