// Package output writes jdeob analysis results to files.
package output

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// MethodEntry summarizes one method in index.json.
type MethodEntry struct {
	Name         string `json:"name"`
	Descriptor   string `json:"descriptor"`
	Access       uint16 `json:"access"`
	Instructions int    `json:"instructions,omitempty"`
	Edges        int    `json:"edges,omitempty"`
	Calls        int    `json:"calls,omitempty"`
	File         string `json:"file,omitempty"`
	Error        string `json:"error,omitempty"`
}

// Index is the per-class summary written next to the graphs.
type Index struct {
	Class   string        `json:"class"`
	Major   uint16        `json:"major"`
	Minor   uint16        `json:"minor"`
	Methods []MethodEntry `json:"methods"`
	Diags   []string      `json:"diagnostics,omitempty"`
}

// WriteIndexJSON writes idx to index.json.
func WriteIndexJSON(dir string, idx *Index) error {
	return writeJSON(filepath.Join(dir, "index.json"), idx)
}

// FileName maps a qualified method name to a portable file stem.
// Characters that are awkward in paths (/ < > ; and the like) become '_'.
func FileName(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '$':
			return r
		}
		return '_'
	}, name)
}

// WriteDOT writes a DOT graph to dot/<name>.dot and returns the path.
func WriteDOT(dir, name, text string) (string, error) {
	return writeText(filepath.Join(dir, "dot"), name+".dot", text)
}

// WriteListing writes a disassembly listing to asm/<name>.txt and returns
// the path.
func WriteListing(dir, name, text string) (string, error) {
	return writeText(filepath.Join(dir, "asm"), name+".txt", text)
}

func writeText(dir, file, text string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("output: mkdir %s: %w", dir, err)
	}
	path := filepath.Join(dir, file)
	if err := os.WriteFile(path, []byte(text), 0644); err != nil {
		return "", fmt.Errorf("output: write %s: %w", path, err)
	}
	return path, nil
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("output: mkdir %s: %w", filepath.Dir(path), err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("output: create %s: %w", path, err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("output: encode %s: %w", path, err)
	}
	return nil
}
