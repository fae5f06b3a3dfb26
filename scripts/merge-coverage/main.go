// Command merge-coverage combines Go coverage profiles, typically one from
// the unit run and one from the -tags=integration run, into a single profile
// on stdout. Blocks reported by several profiles are counted once: counts are
// summed in count and atomic mode and OR-ed in set mode.
package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
)

func main() {
	if len(os.Args) < 3 {
		fmt.Fprintf(os.Stderr, "Usage: %s file1.out file2.out [...]\n", os.Args[0])
		os.Exit(1)
	}

	if err := merge(os.Stdout, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "merge-coverage: %v\n", err)
		os.Exit(1)
	}
}

func merge(w io.Writer, files []string) error {
	var mode string
	counts := make(map[string]int64)

	for _, name := range files {
		fileMode, err := readProfile(name, counts)
		if err != nil {
			return err
		}
		if mode == "" {
			mode = fileMode
		} else if fileMode != mode {
			return fmt.Errorf("%s: mode %q does not match %q", name, fileMode, mode)
		}
	}

	blocks := make([]string, 0, len(counts))
	for b := range counts {
		blocks = append(blocks, b)
	}
	sort.Strings(blocks)

	out := bufio.NewWriter(w)
	fmt.Fprintf(out, "mode: %s\n", mode)
	for _, b := range blocks {
		n := counts[b]
		if mode == "set" && n > 1 {
			n = 1
		}
		fmt.Fprintf(out, "%s %d\n", b, n)
	}
	return out.Flush()
}

// readProfile adds the blocks in name to counts and returns the profile mode.
// A block is "file:start,end numStmts"; the trailing field is its count.
func readProfile(name string, counts map[string]int64) (string, error) {
	f, err := os.Open(name)
	if err != nil {
		return "", err
	}
	defer func() { _ = f.Close() }()

	scanner := bufio.NewScanner(f)
	if !scanner.Scan() {
		return "", fmt.Errorf("%s: missing mode line", name)
	}
	mode, ok := strings.CutPrefix(scanner.Text(), "mode: ")
	if !ok {
		return "", fmt.Errorf("%s: bad mode line %q", name, scanner.Text())
	}

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		i := strings.LastIndexByte(line, ' ')
		if i < 0 {
			return "", fmt.Errorf("%s: malformed line %q", name, line)
		}
		n, err := strconv.ParseInt(line[i+1:], 10, 64)
		if err != nil {
			return "", fmt.Errorf("%s: malformed count in %q", name, line)
		}
		counts[line[:i]] += n
	}
	return mode, scanner.Err()
}
