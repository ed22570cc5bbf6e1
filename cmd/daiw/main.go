package main

import (
	"os"
	"strconv"
	"strings"

	"daiw-cli/internal/cli"
)

// isNodeRef reports whether s looks like a node id or a step number.
func isNodeRef(s string) bool {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "node-") {
		return len(s) > len("node-")
	}
	n, err := strconv.Atoi(s)
	return err == nil && n > 0
}

func rewriteDirectNodeLookupArgs(argv []string) []string {
	// Convenience: `daiw <node-id|step>` works like `daiw nodes show <ref>`.
	//
	// Cobra treats the first non-flag token as a subcommand, so we rewrite argv before parsing.
	// Persistent flags may come first (`daiw --add lyrics 6`), so find the first positional token.
	if len(argv) < 2 {
		return argv
	}

	valueFlags := map[string]bool{
		"--config": true,
		"--format": true,
		"--add":    true,
		"--select": true,
	}
	boolFlags := map[string]bool{
		"--pretty":  true,
		"--verbose": true,
		"-v":        true,
	}

	rewrite := func(i int) []string {
		out := make([]string, 0, len(argv)+2)
		out = append(out, argv[:i]...)
		out = append(out, "nodes", "show")
		return append(out, argv[i:]...)
	}

	for i := 1; i < len(argv); i++ {
		a := strings.TrimSpace(argv[i])
		if a == "" {
			continue
		}
		if a == "--" {
			if i+1 < len(argv) && isNodeRef(argv[i+1]) {
				return rewrite(i + 1)
			}
			return argv
		}
		if strings.HasPrefix(a, "-") {
			if strings.Contains(a, "=") || boolFlags[a] {
				continue
			}
			if valueFlags[a] {
				i++
			}
			continue
		}
		if isNodeRef(a) {
			return rewrite(i)
		}
		return argv
	}
	return argv
}

func main() {
	os.Args = rewriteDirectNodeLookupArgs(os.Args)

	cmd := cli.NewRootCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
