package main

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// State records which sessions were already imported so re-runs only
// pick up new scans.
type State struct {
	ImportedSessions []string `yaml:"imported_sessions"`
}

func (s State) imported(uuid string) bool {
	for _, id := range s.ImportedSessions {
		if id == uuid {
			return true
		}
	}
	return false
}

func readState(file string) State {
	f, err := os.ReadFile(file)
	if err != nil {
		return State{}
	}
	var state State
	if err := yaml.Unmarshal(f, &state); err != nil {
		return State{}
	}
	return state
}

func writeState(state State, file string) {
	f, err := os.Create(file)
	if err != nil {
		fmt.Printf("failed to open state file for writing: %s\n", file)
		return
	}
	defer f.Close()
	bytes, err := yaml.Marshal(state)
	if err != nil {
		fmt.Println("failed to marshal state")
		return
	}
	_, err = f.Write(bytes)
	if err != nil {
		fmt.Printf("failed to write state to: %s\n", file)
	}
}

var infoLogRE = regexp.MustCompile(`^[^.].*_Info\.log$`)

// findSessions scans dir for physio log sets and returns the base path
// of each: everything before the _Info.log suffix. The four signal
// files are not required to exist here; decoding checks for them and
// fails per session.
func findSessions(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	bases := make([]string, 0, 10)
	for _, entry := range entries {
		if entry.IsDir() || !infoLogRE.MatchString(entry.Name()) {
			continue
		}
		base := strings.TrimSuffix(entry.Name(), "_Info.log")
		bases = append(bases, filepath.Join(dir, base))
	}
	return bases, nil
}
