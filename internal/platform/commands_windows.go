//go:build windows

package platform

import (
	"fmt"
	"os/exec"
)

const exeSuffix = ".exe"

func (o *OS) Launch(appName string) error {
	cmd := exec.Command("cmd", "/C", "start", appName+exeSuffix)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to launch %s: %w", appName, err)
	}
	return nil
}

func (o *OS) StartCameraCapture() error {
	cmd := exec.Command("cmd", "/C", "start", "microsoft.windows.camera:")
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to start camera: %w", err)
	}
	return nil
}

func (o *OS) StopCameraCapture() error {
	cmd := exec.Command("taskkill", "/im", "WindowsCamera.exe", "/t", "/f")
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to stop camera: %w", err)
	}
	return nil
}

func (o *OS) LockWorkstation() error {
	cmd := exec.Command("rundll32.exe", "user32.dll,LockWorkStation")
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to lock workstation: %w", err)
	}
	return nil
}
