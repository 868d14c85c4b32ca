package cli

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aidanproy/minorminer/pkg/embed"
)

// jsonGraph is the JSON graph file format: an edge list of label pairs.
// A "nodes" field is accepted and ignored; isolated nodes cannot carry
// chains, so only edges matter to the engine.
type jsonGraph struct {
	Nodes []string    `json:"nodes,omitempty"`
	Edges [][2]string `json:"edges"`
}

// readGraphFile loads a graph from path. Files ending in .json use the
// {"edges": [["u","v"], ...]} format; anything else is read as an edge-list
// text file with one "u v" pair per line, '#' starting a comment.
func readGraphFile(path string) ([]embed.Edge[string], error) {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return readJSONGraph(path)
	}
	return readEdgeList(path)
}

func readJSONGraph(path string) ([]embed.Edge[string], error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var g jsonGraph
	if err := json.Unmarshal(data, &g); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	edges := make([]embed.Edge[string], len(g.Edges))
	for i, e := range g.Edges {
		edges[i] = embed.Edge[string]{U: e[0], V: e[1]}
	}
	return edges, nil
}

func readEdgeList(path string) ([]embed.Edge[string], error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	var edges []embed.Edge[string]
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		fields := strings.Fields(line)
		switch len(fields) {
		case 0:
			continue
		case 2:
			edges = append(edges, embed.Edge[string]{U: fields[0], V: fields[1]})
		default:
			return nil, fmt.Errorf("%s:%d: expected two labels per line, got %d", path, lineNo, len(fields))
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return edges, nil
}

// mappingFile is the JSON format "embed --output" writes and "render"
// reads back.
type mappingFile struct {
	Mapping map[string][]string `json:"mapping"`
	Success bool                `json:"success"`
	Quality embed.Quality       `json:"quality"`
}

// writeMappingFile writes an embedding result as indented JSON.
func writeMappingFile(path string, res *embed.Result) error {
	data, err := json.MarshalIndent(mappingFile{
		Mapping: res.Mapping,
		Success: res.Success,
		Quality: res.Quality,
	}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0644)
}

// readMappingFile loads a previously written embedding result.
func readMappingFile(path string) (*mappingFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var m mappingFile
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &m, nil
}
