// Package phrases supplies target phrases for each difficulty level.
package phrases

import (
	"bufio"
	"embed"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Difficulty selects a phrase dataset.
type Difficulty string

const (
	Base         Difficulty = "base"
	Intermediate Difficulty = "intermediate"
	Advanced     Difficulty = "advanced"
)

//go:embed data/*.json
var datasets embed.FS

// Difficulties lists the supported difficulty levels.
func Difficulties() []Difficulty {
	return []Difficulty{Base, Intermediate, Advanced}
}

// ParseDifficulty converts a name into a Difficulty.
func ParseDifficulty(name string) (Difficulty, error) {
	switch d := Difficulty(strings.ToLower(strings.TrimSpace(name))); d {
	case Base, Intermediate, Advanced:
		return d, nil
	default:
		return "", fmt.Errorf("unknown difficulty %q (available: base, intermediate, advanced)", name)
	}
}

type dataset struct {
	Phrases []string `json:"phrases"`
}

// Embedded returns the built-in phrases for d in dataset order.
func Embedded(d Difficulty) ([]string, error) {
	f, err := datasets.Open("data/" + string(d) + ".json")
	if err != nil {
		return nil, fmt.Errorf("failed to open %s dataset: %w", d, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			// Best-effort close for embedded data.
			_ = cerr
		}
	}()
	return decodeJSON(f)
}

// LoadFile reads phrases from a JSON dataset ({"phrases": [...]}) or, for any
// other extension, from a text file with one phrase per line.
func LoadFile(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close for read-only phrase file.
			_ = cerr
		}
	}()

	if strings.EqualFold(filepath.Ext(path), ".json") {
		return decodeJSON(file)
	}
	return decodeLines(file)
}

func decodeJSON(r io.Reader) ([]string, error) {
	var data dataset
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return nil, fmt.Errorf("failed to decode phrase dataset: %w", err)
	}
	return clean(data.Phrases)
}

func decodeLines(r io.Reader) ([]string, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return clean(lines)
}

func clean(raw []string) ([]string, error) {
	out := make([]string, 0, len(raw))
	for _, p := range raw {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("phrase list is empty")
	}
	return out, nil
}
