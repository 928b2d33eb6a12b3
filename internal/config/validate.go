package config

import (
	"errors"
	"fmt"
	"sort"
)

// Validate checks the manifest for structural problems before any job runs.
func Validate(doc *Manifest) error {
	if doc == nil {
		return errors.New("manifest is empty")
	}
	if doc.Version != "" && doc.Version != "1" {
		return fmt.Errorf("unsupported manifest version %q", doc.Version)
	}
	if len(doc.Jobs) == 0 {
		return errors.New("manifest defines no jobs")
	}

	names := make([]string, 0, len(doc.Jobs))
	for name := range doc.Jobs {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		job := doc.Jobs[name]
		if job == nil {
			return fmt.Errorf("job %s: empty definition", name)
		}
		if job.Worker == "" {
			return fmt.Errorf("job %s: worker is required", name)
		}
		// An omitted timeout falls back to the handle default; one the
		// manifest spells out must be a usable bound.
		if job.Timeout.IsSet() && job.Timeout.Duration <= 0 {
			return fmt.Errorf("job %s: timeout must be positive", name)
		}
	}
	return nil
}

// JobNames returns the manifest's job names in deterministic order.
func JobNames(doc *Manifest) []string {
	names := make([]string, 0, len(doc.Jobs))
	for name := range doc.Jobs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
