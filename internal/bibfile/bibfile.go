// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package bibfile locates a BibTeX file and appends entries to it.
package bibfile

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// DefaultName is created in the working directory when no .bib file exists.
const DefaultName = "references.bib"

// entryKey matches the key of every "@type{key," line.
var entryKey = regexp.MustCompile(`(?m)^\s*@[A-Za-z]+\s*\{\s*([^,\s]+)\s*,`)

// Discover returns explicit when set. Otherwise it returns the only *.bib
// file in dir, or dir/DefaultName when there is none. More than one
// candidate is an error.
func Discover(dir, explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	matches, err := filepath.Glob(filepath.Join(dir, "*.bib"))
	if err != nil {
		return "", fmt.Errorf("listing .bib files: %w", err)
	}
	switch len(matches) {
	case 0:
		return filepath.Join(dir, DefaultName), nil
	case 1:
		return matches[0], nil
	default:
		names := make([]string, len(matches))
		for i, m := range matches {
			names[i] = filepath.Base(m)
		}
		return "", fmt.Errorf("several .bib files in %s (%s): choose one with --bib", dir, strings.Join(names, ", "))
	}
}

// Keys returns the set of entry keys in path. A missing file has no keys.
func Keys(path string) (map[string]bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]bool{}, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	keys := make(map[string]bool)
	for _, m := range entryKey.FindAllSubmatch(data, -1) {
		keys[string(m[1])] = true
	}
	return keys, nil
}

// UniqueKey returns key when it is unused, otherwise key followed by the
// first free letter suffix (b, c, ..., z, then aa, ab, ...).
func UniqueKey(key string, taken map[string]bool) string {
	if !taken[key] {
		return key
	}
	for i := 1; ; i++ {
		candidate := key + suffix(i)
		if !taken[candidate] {
			return candidate
		}
	}
}

// suffix maps 1 → "b", 25 → "z", 26 → "aa". The unsuffixed key plays the
// role of "a".
func suffix(i int) string {
	n := i
	var b []byte
	for n >= 0 {
		b = append([]byte{byte('a' + n%26)}, b...)
		n = n/26 - 1
	}
	return string(b)
}

// Append writes entry to the end of path, creating the file if needed and
// separating it from previous content by a blank line.
func Append(path, entry string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating directory %s: %w", dir, err)
		}
	}

	sep := ""
	if info, err := os.Stat(path); err == nil && info.Size() > 0 {
		last, err := lastByte(path, info.Size())
		if err != nil {
			return err
		}
		sep = "\n"
		if last != '\n' {
			sep = "\n\n"
		}
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	if _, err := f.WriteString(sep + entry); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}

func lastByte(path string, size int64) (byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()
	buf := make([]byte, 1)
	if _, err := f.ReadAt(buf, size-1); err != nil {
		return 0, fmt.Errorf("reading %s: %w", path, err)
	}
	return buf[0], nil
}
