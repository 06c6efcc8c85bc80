package amr

import (
	"bufio"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spring-nlp/spring/spring-golib/errors"
)

// ReadCorpus loads the instances from every file matched by the given
// glob patterns, in deterministic (sorted) file order. A pattern that
// matches nothing is an error: a silently empty training set is never
// what the caller wants.
func ReadCorpus(patterns ...string) ([]*Graph, error) {
	var paths []string
	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, errors.Wrapf(err, "bad corpus pattern %s", pattern)
		}
		if len(matches) == 0 {
			return nil, errors.Errorf("corpus pattern %s matched no files", pattern)
		}
		paths = append(paths, matches...)
	}
	sort.Strings(paths)

	var graphs []*Graph
	for _, path := range paths {
		gs, err := readFile(path)
		if err != nil {
			return nil, errors.Wrapf(err, "unable to read corpus file %s", path)
		}
		graphs = append(graphs, gs...)
	}
	return graphs, nil
}

func readFile(path string) (graphs []*Graph, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer errors.Defer(&err, f.Close)

	var meta map[string]string
	var body []string

	flush := func() {
		if meta == nil && len(body) == 0 {
			return
		}
		if meta == nil {
			meta = map[string]string{}
		}
		graphs = append(graphs, &Graph{
			Metadata: meta,
			Text:     strings.Join(body, "\n"),
		})
		meta = nil
		body = nil
	}

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.TrimSpace(line) == "":
			flush()
		case strings.HasPrefix(line, "# ::"):
			key, value := parseMetadata(line)
			if meta == nil {
				meta = map[string]string{}
			}
			meta[key] = value
		case strings.HasPrefix(line, "#"):
			// plain comment line, e.g. the AMR release header
		default:
			body = append(body, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	flush()

	return graphs, nil
}

func parseMetadata(line string) (string, string) {
	rest := strings.TrimPrefix(line, "# ::")
	parts := strings.SplitN(rest, " ", 2)
	if len(parts) == 1 {
		return parts[0], ""
	}
	return parts[0], strings.TrimSpace(parts[1])
}
