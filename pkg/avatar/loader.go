package avatar

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// LoadPrefab searches dirs (recursively) for a file named
// "<author>_<name>_<version>.json" and parses the first match found.
//
// filepath.WalkDir is used rather than a third-party walker: this repo's
// grounded corpus does not carry a directory-walking dependency, and the
// stdlib walker is the idiomatic choice for a one-shot recursive file
// search.
func LoadPrefab(author, name string, version uint32, dirs []string) (*Prefab, error) {
	fileName := fmt.Sprintf("%s_%s_%d.json", author, name, version)

	for _, dir := range dirs {
		var found string
		err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return nil // skip unreadable entries, keep searching
			}
			if !d.IsDir() && d.Name() == fileName {
				found = path
				return filepath.SkipAll
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("avatar: walk %s: %w", dir, err)
		}
		if found == "" {
			continue
		}

		data, err := os.ReadFile(found)
		if err != nil {
			return nil, fmt.Errorf("avatar: read %s: %w", found, err)
		}
		var prefab Prefab
		if err := json.Unmarshal(data, &prefab); err != nil {
			return nil, fmt.Errorf("avatar: parse %s: %w", found, err)
		}
		return &prefab, nil
	}

	return nil, fmt.Errorf("avatar: prefab %s not found in provided directories", fileName)
}
