// Package sim replays a corpus of instructions under two configurations
// and reports which verdicts change.
package sim

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ppiankov/icscheck/internal/model"
	"github.com/ppiankov/icscheck/internal/validate"
)

// Side is one configuration under comparison.
type Side struct {
	Name           string
	Options        validate.Options
	FailOnWarnings bool
	MaxInputBytes  int64
}

func (s Side) passes(r *model.Report) bool {
	if !r.Compliant {
		return false
	}
	return !s.FailOnWarnings || r.Warnings() == 0
}

// Simulate validates every instruction file under paths with both sides.
// Directories are walked for *.ics and *.txt files. Files that cannot be
// read or decoded are counted as skipped.
func Simulate(paths []string, old, new Side) (*SimResult, error) {
	files, err := collect(paths)
	if err != nil {
		return nil, err
	}

	result := &SimResult{OldName: old.Name, NewName: new.Name, Changes: []DiffEntry{}}
	for _, path := range files {
		text, err := readFile(path, max(old.MaxInputBytes, new.MaxInputBytes))
		if err != nil {
			result.Skipped = append(result.Skipped, SkippedFile{Path: path, Reason: err.Error()})
			continue
		}
		result.TotalFiles++

		oldReport := validate.Validate(text, old.Options)
		newReport := validate.Validate(text, new.Options)
		oldPass, newPass := old.passes(oldReport), new.passes(newReport)
		added, removed := diffRules(oldReport.Rules(), newReport.Rules())

		if oldPass == newPass && len(added) == 0 && len(removed) == 0 {
			continue
		}
		result.Changes = append(result.Changes, DiffEntry{
			Path:         path,
			OldVerdict:   verdictOf(oldPass),
			NewVerdict:   verdictOf(newPass),
			RulesAdded:   added,
			RulesRemoved: removed,
		})
		result.ChangedFiles++
		switch {
		case oldPass && !newPass:
			result.NewlyFailing++
		case !oldPass && newPass:
			result.NewlyPassing++
		}
	}
	return result, nil
}

func verdictOf(pass bool) string {
	if pass {
		return VerdictPass
	}
	return VerdictFail
}

// collect expands paths into a sorted, de-duplicated file list.
func collect(paths []string) ([]string, error) {
	seen := make(map[string]bool)
	var files []string
	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			files = append(files, p)
		}
	}

	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", p, err)
		}
		if !info.IsDir() {
			add(p)
			continue
		}
		err = filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return nil
			}
			switch strings.ToLower(filepath.Ext(path)) {
			case ".ics", ".txt":
				add(path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk %s: %w", p, err)
		}
	}
	sort.Strings(files)
	return files, nil
}

func readFile(path string, maxBytes int64) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	return validate.Read(f, maxBytes)
}

// diffRules returns the rule IDs present only in new and only in old,
// each sorted and unique.
func diffRules(oldRules, newRules []model.RuleID) (added, removed []string) {
	oldSet := make(map[model.RuleID]bool)
	for _, r := range oldRules {
		oldSet[r] = true
	}
	newSet := make(map[model.RuleID]bool)
	for _, r := range newRules {
		newSet[r] = true
	}
	for r := range newSet {
		if !oldSet[r] {
			added = append(added, string(r))
		}
	}
	for r := range oldSet {
		if !newSet[r] {
			removed = append(removed, string(r))
		}
	}
	sort.Strings(added)
	sort.Strings(removed)
	return added, removed
}
