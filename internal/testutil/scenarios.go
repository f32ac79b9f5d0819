// Package testutil provides shared helpers for s0 conformance tests.
package testutil

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ScenariosDir is the relative path from the repository root to the
// conformance scenario files.
const ScenariosDir = "testdata/scenarios"

// Scenario is one conformance case loaded from a scenarios JSON file.
// Exactly one of ParseError or the Expect/Error pair applies: when
// ParseError is set the source must fail to parse with that code;
// otherwise Expect lists the outcome of each form that completes, and
// Error, when set, is the code evaluation must stop with afterwards.
type Scenario struct {
	Name       string        `json:"-"`
	Source     string        `json:"source"`
	ParseError string        `json:"parseError,omitempty"`
	Expect     []Expectation `json:"expect,omitempty"`
	Error      string        `json:"error,omitempty"`
}

// Expectation describes the outcome of one top-level form.
type Expectation struct {
	Kind   string  `json:"kind"` // "number" or "none"
	Number float64 `json:"number,omitempty"`
}

// LoadScenario loads one scenario file. The scenario name is the file
// name without its extension.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var s Scenario
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	s.Name = strings.TrimSuffix(filepath.Base(path), ".json")
	return &s, nil
}

// ListScenarios returns all scenario files under root in sorted order.
func ListScenarios(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".json") {
			files = append(files, filepath.Join(root, e.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}
