package watcher

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

const maxPathCacheEntries = 10000

// pattern is a parsed .gitignore-style line, carried over from the
// teacher's IgnorePattern with the same four orthogonal flags.
type pattern struct {
	text        string
	isNegation  bool
	isDirectory bool
	isAbsolute  bool
	isSimple    bool
}

func parsePattern(line string) (pattern, bool) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return pattern{}, false
	}

	p := pattern{text: line}
	if strings.HasPrefix(p.text, "!") {
		p.isNegation = true
		p.text = p.text[1:]
	}
	if strings.HasSuffix(p.text, "/") {
		p.isDirectory = true
		p.text = strings.TrimSuffix(p.text, "/")
	}
	if strings.HasPrefix(p.text, "/") {
		p.isAbsolute = true
		p.text = strings.TrimPrefix(p.text, "/")
	}
	if p.text == "" {
		return pattern{}, false
	}
	p.isSimple = !strings.ContainsAny(p.text, "*?[]")
	return p, true
}

func (p pattern) match(relPath string) bool {
	filename := filepath.Base(relPath)
	if p.isAbsolute {
		if p.isSimple {
			return relPath == p.text || strings.HasPrefix(relPath, p.text+"/")
		}
		ok, err := filepath.Match(p.text, relPath)
		return err == nil && ok
	}
	if p.isSimple {
		if strings.Contains(p.text, "/") {
			return relPath == p.text || strings.HasPrefix(relPath, p.text+"/")
		}
		if p.isDirectory {
			return filename == p.text ||
				strings.Contains(relPath, "/"+p.text+"/") ||
				strings.HasPrefix(relPath, p.text+"/")
		}
		return filename == p.text
	}
	target := filename
	if strings.Contains(p.text, "/") {
		target = relPath
	}
	ok, err := filepath.Match(p.text, target)
	return err == nil && ok
}

// ignoreSet is the "assembled" filter spec.md §4.2 names: the union of
// patterns loaded from project .gitignore, the primary repo's own
// info/exclude, and a global user excludesfile, read in that order; the
// last pattern that matches a path decides its result. It tracks the
// absolute paths it loaded from so the watcher's event loop can recognize
// a write to one of them and trigger a reload instead of a snapshot.
type ignoreSet struct {
	root     string
	sources  []string
	patterns []pattern

	mu    sync.RWMutex
	cache map[string]bool
}

// newIgnoreSet loads patterns from each source file that exists, in
// order, and returns the assembled set. Missing files are skipped
// silently; a file that cannot be read for another reason is skipped
// with its error discarded, the same "ignore files are best-effort"
// posture as the teacher's loadIgnoreFile.
func newIgnoreSet(root string, sources []string) *ignoreSet {
	s := &ignoreSet{root: root, sources: sources, cache: make(map[string]bool)}
	s.load()
	return s
}

func (s *ignoreSet) load() {
	var patterns []pattern
	for _, path := range s.sources {
		f, err := os.Open(path)
		if err != nil {
			continue
		}
		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			if p, ok := parsePattern(scanner.Text()); ok {
				patterns = append(patterns, p)
			}
		}
		f.Close()
	}

	s.mu.Lock()
	s.patterns = patterns
	s.cache = make(map[string]bool)
	s.mu.Unlock()
}

// Reload re-reads every source file, used on the ReloadExec path when a
// tracked ignore file changes.
func (s *ignoreSet) Reload() {
	s.load()
}

// Sources returns the absolute paths this set was assembled from.
func (s *ignoreSet) Sources() []string {
	return s.sources
}

// IsTrackedSource reports whether absPath is one of the files this set
// was loaded from, used by the event loop to detect a filter change.
func (s *ignoreSet) IsTrackedSource(absPath string) bool {
	for _, src := range s.sources {
		if src == absPath {
			return true
		}
	}
	return false
}

func (s *ignoreSet) ShouldIgnore(absPath string) bool {
	relPath, err := filepath.Rel(s.root, absPath)
	if err != nil {
		relPath = absPath
	}
	relPath = filepath.ToSlash(relPath)

	s.mu.RLock()
	if v, ok := s.cache[relPath]; ok {
		s.mu.RUnlock()
		return v
	}
	s.mu.RUnlock()

	result := false
	for _, p := range s.patterns {
		if p.match(relPath) {
			result = !p.isNegation
		}
	}

	s.mu.Lock()
	if len(s.cache) >= maxPathCacheEntries {
		s.cache = make(map[string]bool)
	}
	s.cache[relPath] = result
	s.mu.Unlock()

	return result
}

// assembleIgnoreSources builds the spec.md §4.2 "assembled set of ignore
// files discovered at startup": project .gitignore, the primary repo's
// own per-repo exclude (R/.git/info/exclude), and the global
// excludesfile named by the user's primary-repo core.excludesfile
// config, if set.
func assembleIgnoreSources(root, primaryExcludeFile, globalExcludesFile string) []string {
	sources := []string{filepath.Join(root, ".gitignore")}
	if primaryExcludeFile != "" {
		sources = append(sources, primaryExcludeFile)
	}
	if globalExcludesFile != "" {
		sources = append(sources, expandHome(globalExcludesFile))
	}
	return sources
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}
