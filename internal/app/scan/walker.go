package scan

import (
	"io/fs"
	"path/filepath"
	"strings"
)

// gitDirName is the version-control metadata directory a clone leaves in
// the workspace.
const gitDirName = ".git"

// walkFiles walks root depth-first and invokes fn for every candidate
// file, with its slash-separated path relative to root and its absolute
// path. A candidate is a file whose name ends with one of the allowlisted
// extensions. Returning an error from fn stops the walk.
func walkFiles(root string, extensions []string, excludeVCS bool, fn func(relPath, absPath string) error) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if excludeVCS && d.Name() == gitDirName {
				return filepath.SkipDir
			}
			return nil
		}

		if !hasAllowedExtension(d.Name(), extensions) {
			return nil
		}

		relPath, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}

		return fn(filepath.ToSlash(relPath), path)
	})
}

// hasAllowedExtension matches by name suffix, case-insensitively, so
// compound extensions in the allowlist behave as written.
func hasAllowedExtension(name string, extensions []string) bool {
	lower := strings.ToLower(name)
	for _, ext := range extensions {
		if strings.HasSuffix(lower, strings.ToLower(ext)) {
			return true
		}
	}
	return false
}
