//go:build !windows

package platform

import (
	"fmt"
	"os/exec"

	log "github.com/sirupsen/logrus"
)

const exeSuffix = ""

func (o *OS) Launch(appName string) error {
	cmd := exec.Command(appName)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to launch %s: %w", appName, err)
	}
	return nil
}

func (o *OS) StartCameraCapture() error {
	log.Warn("camera capture not available on this platform")
	return nil
}

func (o *OS) StopCameraCapture() error {
	return nil
}

func (o *OS) LockWorkstation() error {
	cmd := exec.Command("loginctl", "lock-session")
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to lock session: %w", err)
	}
	return nil
}
