package invoke

import (
	"bytes"
	"errors"
	"io/fs"
	"strings"
	"testing"
)

func TestParsePTYMode(t *testing.T) {
	tests := []struct {
		in      string
		want    PTYMode
		wantErr bool
	}{
		{"yes", PTYAlways, false},
		{"no", PTYNever, false},
		{"detect", PTYDetect, false},
		{"maybe", 0, true},
	}
	for _, tt := range tests {
		got, err := ParsePTYMode(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParsePTYMode(%q): expected error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParsePTYMode(%q): %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParsePTYMode(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestRun_AppendsPathAndStreamsOutput(t *testing.T) {
	var stdout, stderr bytes.Buffer
	iv := &Invoker{Args: []string{"echo"}, Stdout: &stdout, Stderr: &stderr}

	code, err := iv.Run("/tmp/staged.py")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if code != 0 {
		t.Errorf("exit code = %d, want 0", code)
	}
	if !strings.Contains(stdout.String(), "/tmp/staged.py") {
		t.Errorf("stdout = %q, want the staged path", stdout.String())
	}
}

func TestRun_NonZeroExit(t *testing.T) {
	var stdout, stderr bytes.Buffer
	iv := &Invoker{Args: []string{"sh", "-c", "exit 3"}, Stdout: &stdout, Stderr: &stderr}

	code, err := iv.Run("/tmp/staged.py")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if code != 3 {
		t.Errorf("exit code = %d, want 3", code)
	}
}

func TestRun_BinaryNotFound(t *testing.T) {
	var stdout, stderr bytes.Buffer
	iv := &Invoker{Args: []string{"nonexistent-binary-xyz-123"}, Stdout: &stdout, Stderr: &stderr}

	_, err := iv.Run("/tmp/staged.py")
	var invErr InvocationError
	if !errors.As(err, &invErr) {
		t.Fatalf("err = %v, want InvocationError", err)
	}
	if !strings.Contains(invErr.Error(), "nonexistent-binary-xyz-123") {
		t.Errorf("error = %q, want to mention the binary name", invErr.Error())
	}
	if code := invErr.ExitCode(); code != 2 {
		t.Errorf("exit code = %d, want 2 for a missing command", code)
	}
}

func TestInvocationError_ExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"permission denied", fs.ErrPermission, 13},
		{"no errno", errors.New("broken pipe"), 1},
	}
	for _, tt := range tests {
		got := InvocationError{Command: "cmd", Err: tt.err}.ExitCode()
		if got != tt.want {
			t.Errorf("%s: exit code = %d, want %d", tt.name, got, tt.want)
		}
	}
}
