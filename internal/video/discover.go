package video

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Output name suffixes.
const (
	SuffixDepth = "_video_depth.mp4"
	SuffixSound = "_video_depth_sound.mp4"
)

// Discover expands path into the list of inputs to process:
//   - a file whose name ends in "txt" lists one input per line
//   - any other file is the only input
//   - a directory yields its entries not starting with ".", sorted
func Discover(path string) ([]string, error) {
	st, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat input: %w", err)
	}

	if st.IsDir() {
		entries, err := os.ReadDir(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read directory: %w", err)
		}
		var files []string
		for _, e := range entries {
			if strings.HasPrefix(e.Name(), ".") {
				continue
			}
			files = append(files, filepath.Join(path, e.Name()))
		}
		sort.Strings(files)
		return files, nil
	}

	if strings.HasSuffix(path, "txt") {
		return readList(path)
	}
	return []string{path}, nil
}

func readList(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open list: %w", err)
	}
	defer f.Close()

	var files []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		files = append(files, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read list: %w", err)
	}
	return files, nil
}

// OutputPath returns outdir/<input base name without extension><suffix>.
// The extension is cut at the last "."; a name without one is kept whole.
func OutputPath(outdir, input, suffix string) string {
	base := filepath.Base(input)
	if i := strings.LastIndex(base, "."); i >= 0 {
		base = base[:i]
	}
	return filepath.Join(outdir, base+suffix)
}
