package kompose

import (
	"bytes"
	"context"
	"os/exec"
)

// Runner executes the converter binary. It exists so tests can replace the subprocess.
type Runner interface {
	LookPath(file string) (string, error)
	Run(ctx context.Context, dir, name string, args ...string) (stdout, stderr []byte, err error)
}

// RealRunner implements Runner using os/exec
type RealRunner struct{}

func NewRealRunner() *RealRunner {
	return &RealRunner{}
}

func (r *RealRunner) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

// Run executes name in dir and returns stdout and stderr separately.
// Cancelling ctx kills the process.
func (r *RealRunner) Run(ctx context.Context, dir, name string, args ...string) ([]byte, []byte, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}
