package ossfuzz

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

// fakeRegistry is an in-memory Registry. Remote refs and local containers
// are plain sets; Commit moves a container snapshot into the remote set the
// way a commit-then-push pipeline would.
type fakeRegistry struct {
	remote map[string]bool
	local  map[string]bool

	pulls   []string
	commits []string
	removes []string

	failCommit bool
}

func newFakeRegistry() *fakeRegistry {
	return &fakeRegistry{
		remote: make(map[string]bool),
		local:  make(map[string]bool),
	}
}

func (r *fakeRegistry) Pull(ref string) error {
	r.pulls = append(r.pulls, ref)
	if !r.remote[ref] {
		return errors.New("pull: manifest unknown")
	}
	return nil
}

func (r *fakeRegistry) Inspect(ref string) error {
	if r.remote[ref] {
		return nil
	}
	return errors.New("inspect: manifest unknown")
}

func (r *fakeRegistry) Commit(container, ref string) error {
	if r.failCommit {
		return errors.New("commit failed")
	}
	if !r.local[container] {
		return fmt.Errorf("no such container: %s", container)
	}
	r.remote[ref] = true
	r.commits = append(r.commits, ref)
	return nil
}

func (r *fakeRegistry) RemoveContainer(name string) error {
	delete(r.local, name)
	r.removes = append(r.removes, name)
	return nil
}

// fakeToolchain records build invocations. A successful fuzzer build
// registers the saved container with the fake registry, mirroring the
// container-saving convention.
type fakeToolchain struct {
	reg *fakeRegistry

	fuzzerBuilds []string
	imageBuilds  []string

	failSanitizers map[string]bool
}

func (t *fakeToolchain) BuildFuzzers(
	project, sanitizer string, extraEnv map[string]string,
) error {
	t.fuzzerBuilds = append(t.fuzzerBuilds, project+"/"+sanitizer)
	if t.failSanitizers[sanitizer] {
		return errors.New("fuzzer build failed")
	}
	if name := extraEnv[saveContainersEnv]; name != "" && t.reg != nil {
		t.reg.local[name] = true
	}
	return nil
}

func (t *fakeToolchain) BuildImage(
	project string, extraEnv map[string]string,
) error {
	t.imageBuilds = append(t.imageBuilds, project)
	return nil
}

type testEnv struct {
	t       *testing.T
	dir     string
	scripts string

	reg *fakeRegistry
	tc  *fakeToolchain
	b   *Builder
}

func newTestEnv(t *testing.T, sanitizers []string) *testEnv {
	t.Helper()

	dir := t.TempDir()
	scripts := filepath.Join(dir, "fuzzer_build_script")
	for _, d := range []string{filepath.Join(dir, "projects"), scripts} {
		if err := os.MkdirAll(d, 0700); err != nil {
			t.Fatal(err)
		}
	}

	reg := newFakeRegistry()
	tc := &fakeToolchain{reg: reg}
	b := NewBuilder(&Config{
		OSSFuzzDir:     dir,
		EnableCaching:  true,
		BuildScriptDir: scripts,
		Sanitizers:     sanitizers,
		Registry:       reg,
		Toolchain:      tc,
	})

	return &testEnv{
		t:       t,
		dir:     dir,
		scripts: scripts,
		reg:     reg,
		tc:      tc,
		b:       b,
	}
}

func (te *testEnv) addProject(name string, files map[string]string) {
	te.t.Helper()
	dir := filepath.Join(te.dir, "projects", name)
	if err := os.MkdirAll(dir, 0700); err != nil {
		te.t.Fatal(err)
	}
	for f, content := range files {
		p := filepath.Join(dir, f)
		if err := os.WriteFile(p, []byte(content), 0644); err != nil {
			te.t.Fatal(err)
		}
	}
}

func (te *testEnv) addCacheScript(project string) {
	te.t.Helper()
	p := filepath.Join(te.scripts, project)
	if err := os.WriteFile(p, []byte("#!/bin/sh\n"), 0755); err != nil {
		te.t.Fatal(err)
	}
}

func (te *testEnv) readProjectFile(project, file string) string {
	te.t.Helper()
	bs, err := os.ReadFile(filepath.Join(te.dir, "projects", project, file))
	if err != nil {
		te.t.Fatal(err)
	}
	return string(bs)
}
