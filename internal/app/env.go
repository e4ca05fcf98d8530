package app

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
)

// DefaultEnvFiles are read by the CLI before flags are parsed.
var DefaultEnvFiles = []string{".env", ".env.local"}

// LoadEnvFiles loads dotenv files of KEY=VALUE pairs into the process
// environment. Later files override earlier ones. Variables already exported
// by the shell are kept unless overwrite is set. Missing files are skipped.
func LoadEnvFiles(overwrite bool, paths ...string) error {
	shell := map[string]bool{}
	if !overwrite {
		for _, kv := range os.Environ() {
			if i := strings.IndexByte(kv, '='); i > 0 {
				shell[kv[:i]] = true
			}
		}
	}
	for _, p := range paths {
		if strings.TrimSpace(p) == "" {
			continue
		}
		pairs, err := readEnvFile(p)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", p, err)
		}
		for _, kv := range pairs {
			if shell[kv[0]] {
				continue
			}
			_ = os.Setenv(kv[0], kv[1])
		}
	}
	return nil
}

func readEnvFile(path string) ([][2]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out [][2]string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimPrefix(line, "export ")
		eq := strings.IndexByte(line, '=')
		if eq <= 0 {
			continue
		}
		key := strings.TrimSpace(line[:eq])
		out = append(out, [2]string{key, unquote(strings.TrimSpace(line[eq+1:]))})
	}
	return out, scanner.Err()
}

// unquote strips matching quotes. Unquoted values lose a trailing " # comment".
func unquote(val string) string {
	if len(val) >= 2 {
		if (val[0] == '"' && val[len(val)-1] == '"') || (val[0] == '\'' && val[len(val)-1] == '\'') {
			return val[1 : len(val)-1]
		}
	}
	if i := strings.Index(val, " #"); i >= 0 {
		val = strings.TrimSpace(val[:i])
	}
	return val
}
