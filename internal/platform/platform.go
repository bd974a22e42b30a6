package platform

// Controller abstracts the OS operations the locker needs: process lookup
// and termination, relaunching a guarded application, and the punitive
// camera/lock-workstation commands. Workflows depend on this interface so
// tests can run against a fake.
type Controller interface {
	// FindProcess returns the pid of a running process whose executable name
	// matches name (case-insensitive, platform suffix applied), or found=false.
	FindProcess(name string) (pid int32, found bool, err error)

	// Terminate requests termination of the process with the given pid.
	Terminate(pid int32) error

	// Launch starts the named application.
	Launch(appName string) error

	// StartCameraCapture opens the platform camera application.
	StartCameraCapture() error

	// StopCameraCapture force-stops the camera application.
	StopCameraCapture() error

	// LockWorkstation locks the current session.
	LockWorkstation() error
}
