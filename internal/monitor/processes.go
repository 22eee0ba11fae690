package monitor

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shirou/gopsutil/process"
)

// processEntry is the per-process view ListProcesses reads from
type processEntry interface {
	PID() int
	Name() (string, error)
	Exe() (string, error)
	Cmdline() (string, error)
}

type systemProcess struct {
	*process.Process
}

func (p systemProcess) PID() int { return int(p.Pid) }

func systemProcesses() ([]processEntry, error) {
	procs, err := process.Processes()
	if err != nil {
		return nil, err
	}
	entries := make([]processEntry, len(procs))
	for i, p := range procs {
		entries[i] = systemProcess{p}
	}
	return entries, nil
}

// ListProcesses enumerates running processes sorted by name. Processes whose name
// cannot be read are skipped; the path and title are best effort.
func ListProcesses() ([]ProcessInfo, error) {
	return listFrom(systemProcesses)
}

func listFrom(source func() ([]processEntry, error)) ([]ProcessInfo, error) {
	procs, err := source()
	if err != nil {
		return nil, fmt.Errorf("error listing processes: %w", err)
	}

	infos := make([]ProcessInfo, 0, len(procs))
	for _, p := range procs {
		name, err := p.Name()
		if err != nil || name == "" {
			continue
		}

		info := ProcessInfo{PID: p.PID(), Name: name}
		if exe, err := p.Exe(); err == nil {
			info.Command = exe
		}
		if cmdline, err := p.Cmdline(); err == nil {
			info.Title = strings.TrimSpace(cmdline)
		}
		infos = append(infos, info)
	}

	sort.SliceStable(infos, func(i, j int) bool {
		if !strings.EqualFold(infos[i].Name, infos[j].Name) {
			return strings.ToLower(infos[i].Name) < strings.ToLower(infos[j].Name)
		}
		return infos[i].PID < infos[j].PID
	})
	return infos, nil
}

// SelectionFromEntry extracts the process name from a "name - title" entry.
// The platform executable suffix is dropped so the stored name matches what a
// user would type.
func SelectionFromEntry(entry string) string {
	if i := strings.Index(entry, " - "); i > 0 {
		entry = entry[:i]
	}
	return StripSuffix(strings.TrimSpace(entry), ExecutableSuffix)
}

// UniqueNames returns the distinct process names in procs, keeping the order of
// first appearance
func UniqueNames(procs []ProcessInfo) []string {
	seen := make(map[string]struct{}, len(procs))
	var names []string
	for _, p := range procs {
		key := strings.ToLower(p.Name)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		names = append(names, p.Name)
	}
	return names
}
