package sysquery

import (
	"context"
	"os/exec"
	"strings"
	"sync"

	gameerrors "github.com/alexisbeaulieu97/gameready/pkg/errors"
)

type fakeResponse struct {
	result Result
	err    error
}

// Fake is a scripted Runner keyed by the space-joined argv. Commands without a
// script behave like a missing binary.
type Fake struct {
	mu        sync.Mutex
	responses map[string]fakeResponse
	calls     [][]string
}

// NewFake returns an empty scripted runner.
func NewFake() *Fake {
	return &Fake{responses: make(map[string]fakeResponse)}
}

var _ Runner = (*Fake)(nil)

// Stdout scripts a successful command printing stdout.
func (f *Fake) Stdout(stdout string, argv ...string) *Fake {
	return f.Set(Result{Stdout: stdout}, argv...)
}

// Set scripts the result for argv. A non-zero exit code also yields a QueryError
// just like ExecRunner.
func (f *Fake) Set(res Result, argv ...string) *Fake {
	var err error
	if res.ExitCode != 0 {
		err = gameerrors.NewQueryError(argv, res.ExitCode, false, nil)
	}
	return f.set(argv, fakeResponse{result: res, err: err})
}

// Timeout scripts argv to behave as if it exceeded its deadline.
func (f *Fake) Timeout(argv ...string) *Fake {
	return f.set(argv, fakeResponse{
		result: Result{ExitCode: -1},
		err:    gameerrors.NewQueryError(argv, -1, true, context.DeadlineExceeded),
	})
}

func (f *Fake) set(argv []string, resp fakeResponse) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses[strings.Join(argv, " ")] = resp
	return f
}

// Run returns the scripted response for argv.
func (f *Fake) Run(ctx context.Context, argv ...string) (Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, append([]string(nil), argv...))

	if ctx != nil && ctx.Err() != nil {
		return Result{ExitCode: -1}, gameerrors.NewQueryError(argv, -1, true, ctx.Err())
	}

	resp, ok := f.responses[strings.Join(argv, " ")]
	if !ok {
		return Result{ExitCode: -1}, gameerrors.NewQueryError(argv, -1, false, exec.ErrNotFound)
	}
	return resp.result, resp.err
}

// Calls returns every argv the fake has received, in order.
func (f *Fake) Calls() [][]string {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([][]string, len(f.calls))
	for i, call := range f.calls {
		out[i] = append([]string(nil), call...)
	}
	return out
}

// Called reports whether argv was run at least once.
func (f *Fake) Called(argv ...string) bool {
	want := strings.Join(argv, " ")
	for _, call := range f.Calls() {
		if strings.Join(call, " ") == want {
			return true
		}
	}
	return false
}
