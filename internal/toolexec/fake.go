package toolexec

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// FakeRunner is a scripted Runner for tests. Responses are keyed by the
// joined command line; unmatched invocations fail with a missing-binary
// style error so tests notice unscripted calls.
type FakeRunner struct {
	mu        sync.Mutex
	responses map[string]Result
	missing   map[string]bool
	calls     []string
	started   []string
}

// NewFake returns an empty FakeRunner.
func NewFake() *FakeRunner {
	return &FakeRunner{
		responses: make(map[string]Result),
		missing:   make(map[string]bool),
	}
}

func key(name string, args []string) string {
	return strings.Join(append([]string{name}, args...), " ")
}

// Script registers the Result returned for an exact command line.
func (f *FakeRunner) Script(cmdline string, res Result) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses[cmdline] = res
}

// ScriptOutput registers a successful invocation producing stdout.
func (f *FakeRunner) ScriptOutput(cmdline, stdout string) {
	f.Script(cmdline, Result{Stdout: []byte(stdout)})
}

// MarkMissing makes LookPath report name as absent.
func (f *FakeRunner) MarkMissing(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.missing[name] = true
}

func (f *FakeRunner) Run(_ context.Context, name string, args ...string) Result {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := key(name, args)
	f.calls = append(f.calls, k)
	if res, ok := f.responses[k]; ok {
		return res
	}
	// Prefix match lets tests script a tool once regardless of trailing
	// arguments (e.g. every "swww img ..." line).
	for scripted, res := range f.responses {
		if strings.HasSuffix(scripted, " *") && strings.HasPrefix(k, strings.TrimSuffix(scripted, "*")) {
			return res
		}
	}
	return Result{Err: fmt.Errorf("fake runner: unscripted command %q", k)}
}

func (f *FakeRunner) Start(name string, args ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.started = append(f.started, key(name, args))
	return nil
}

func (f *FakeRunner) LookPath(name string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return !f.missing[name]
}

// Started returns every Start command line in invocation order.
func (f *FakeRunner) Started() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.started))
	copy(out, f.started)
	return out
}

// Calls returns every Run command line in invocation order.
func (f *FakeRunner) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.calls))
	copy(out, f.calls)
	return out
}

// CallsMatching returns the Run command lines that begin with prefix.
func (f *FakeRunner) CallsMatching(prefix string) []string {
	var out []string
	for _, c := range f.Calls() {
		if strings.HasPrefix(c, prefix) {
			out = append(out, c)
		}
	}
	return out
}
