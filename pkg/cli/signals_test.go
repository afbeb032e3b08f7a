package cli

import (
	"os"
	"syscall"
	"testing"
	"time"
)

func TestSetupSignalHandler(t *testing.T) {
	ctx := SetupSignalHandler()

	select {
	case <-ctx.Done():
		t.Error("context should not be cancelled initially")
	default:
	}

	if ctx.Done() == nil {
		t.Error("context should have a Done channel")
	}
}

func TestSetupSignalHandlerCancelsOnSignal(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping signal test in short mode")
	}

	ctx := SetupSignalHandler()

	go func() {
		time.Sleep(50 * time.Millisecond)
		p, _ := os.FindProcess(os.Getpid())
		_ = p.Signal(syscall.SIGTERM)
	}()

	select {
	case <-ctx.Done():
		// Cancelled as expected
	case <-time.After(500 * time.Millisecond):
		t.Skip("signal not received within timeout (this is okay)")
	}
}
