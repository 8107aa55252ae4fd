package importer

import (
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	gitignore "github.com/sabhiram/go-gitignore"
)

// discover enumerates every file under cfg.ProjectRoot (optionally
// restricted to cfg.IncludeDirs) whose extension is one of exts, in
// sorted order for reproducible node-phase ordering. A path is dropped if
// it matches any entry of cfg.ExcludeDirs — by prefix, or by regexp if the
// entry ends in "$" — or, when UseGitignore is set, a rule of the
// .gitignore file at the project root (nested .gitignore files are not
// read).
func discover(cfg Config, exts map[string]bool) ([]string, error) {
	info, err := os.Stat(cfg.ProjectRoot)
	if err != nil || !info.IsDir() {
		return nil, ErrProjectRootMissing
	}

	excludeRegexes, err := compileExcludeRegexes(cfg.ExcludeDirs)
	if err != nil {
		return nil, err
	}

	var ignorer *gitignore.GitIgnore
	if cfg.UseGitignore {
		if ig, err := gitignore.CompileIgnoreFile(filepath.Join(cfg.ProjectRoot, ".gitignore")); err == nil {
			ignorer = ig
		}
	}

	var out []string
	err = filepath.Walk(cfg.ProjectRoot, func(path string, fi os.FileInfo, walkErr error) error {
		if walkErr != nil {
			return nil // absorb a single unreadable entry rather than abort discovery
		}
		if fi.IsDir() {
			return nil
		}
		if !exts[strings.ToLower(filepath.Ext(path))] {
			return nil
		}

		rel, err := filepath.Rel(cfg.ProjectRoot, path)
		if err != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if len(cfg.IncludeDirs) > 0 && !underAnyDir(rel, cfg.IncludeDirs) {
			return nil
		}
		if matchesExclude(rel, cfg.ExcludeDirs, excludeRegexes) {
			return nil
		}
		if ignorer != nil && ignorer.MatchesPath(rel) {
			return nil
		}

		out = append(out, path)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(out)
	return out, nil
}

func compileExcludeRegexes(excludes []string) (map[string]*regexp.Regexp, error) {
	regexes := make(map[string]*regexp.Regexp)
	for _, e := range excludes {
		if !strings.HasSuffix(e, "$") {
			continue
		}
		re, err := regexp.Compile(e)
		if err != nil {
			return nil, err
		}
		regexes[e] = re
	}
	return regexes, nil
}

func matchesExclude(rel string, excludes []string, regexes map[string]*regexp.Regexp) bool {
	for _, e := range excludes {
		if re, ok := regexes[e]; ok {
			if re.MatchString(rel) {
				return true
			}
			continue
		}
		if strings.HasPrefix(rel, e) {
			return true
		}
	}
	return false
}

func underAnyDir(rel string, dirs []string) bool {
	for _, d := range dirs {
		d = strings.TrimSuffix(filepath.ToSlash(d), "/")
		if rel == d || strings.HasPrefix(rel, d+"/") {
			return true
		}
	}
	return false
}
