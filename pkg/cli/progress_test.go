package cli

import (
	"bytes"
	"fmt"
	"strings"
	"testing"
)

func TestSimpleProgressBasic(t *testing.T) {
	buf := &bytes.Buffer{}
	progress := NewProgressReporter(buf)

	progress.Start(4)
	progress.Update(2)
	progress.Finish()

	output := buf.String()
	if !strings.Contains(output, "files") {
		t.Errorf("expected progress output to mention files: %q", output)
	}
	if !strings.Contains(output, "(4/4 files)") {
		t.Errorf("expected final render at 4/4: %q", output)
	}
}

func TestSimpleProgressIncrement(t *testing.T) {
	buf := &bytes.Buffer{}
	progress := NewProgressReporter(buf)

	progress.Start(3)
	progress.Increment()
	progress.Increment()

	if !strings.Contains(buf.String(), "(2/3 files)") {
		t.Errorf("expected render at 2/3: %q", buf.String())
	}
}

func TestSimpleProgressZeroTotal(t *testing.T) {
	buf := &bytes.Buffer{}
	progress := NewProgressReporter(buf)

	// Zero total renders nothing but must not panic
	progress.Start(0)
	progress.Update(0)
	progress.Finish()
}

func TestSimpleProgressError(t *testing.T) {
	buf := &bytes.Buffer{}
	progress := NewProgressReporter(buf)

	progress.Start(10)
	progress.Error(fmt.Errorf("parse failed"))

	output := buf.String()
	if !strings.Contains(output, "Error:") {
		t.Error("expected error output to contain 'Error:'")
	}
	if !strings.Contains(output, "parse failed") {
		t.Error("expected error output to contain error message")
	}
}

func TestSimpleProgressConcurrent(t *testing.T) {
	buf := &bytes.Buffer{}
	progress := NewProgressReporter(buf)

	progress.Start(100)

	done := make(chan bool)
	for i := 0; i < 10; i++ {
		go func() {
			for j := 0; j < 10; j++ {
				progress.Increment()
			}
			done <- true
		}()
	}
	for i := 0; i < 10; i++ {
		<-done
	}

	progress.Finish()

	if !strings.Contains(buf.String(), "(100/100 files)") {
		t.Errorf("expected final render at 100/100: %q", buf.String())
	}
}

func TestNewProgressReporterNilWriter(t *testing.T) {
	// Defaults to stderr, must not panic
	progress := NewProgressReporter(nil)
	if progress == nil {
		t.Fatal("NewProgressReporter(nil) should not return nil")
	}
}
