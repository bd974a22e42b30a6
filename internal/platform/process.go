package platform

import (
	"fmt"
	"strings"

	"github.com/shirou/gopsutil/v3/process"
)

// OS is the production Controller backed by gopsutil and the platform
// command set in commands_*.go.
type OS struct{}

func NewOS() *OS {
	return &OS{}
}

func (o *OS) FindProcess(name string) (int32, bool, error) {
	want := strings.ToLower(name + exeSuffix)

	procs, err := process.Processes()
	if err != nil {
		return 0, false, fmt.Errorf("failed to enumerate processes: %w", err)
	}

	for _, p := range procs {
		pname, err := p.Name()
		if err != nil {
			continue // process may have exited mid-scan
		}
		if strings.ToLower(pname) == want {
			return p.Pid, true, nil
		}
	}

	return 0, false, nil
}

func (o *OS) Terminate(pid int32) error {
	p, err := process.NewProcess(pid)
	if err != nil {
		return fmt.Errorf("failed to open process %d: %w", pid, err)
	}
	if err := p.Terminate(); err != nil {
		return fmt.Errorf("failed to terminate process %d: %w", pid, err)
	}
	return nil
}
