package ossfuzz

import (
	"os"
	"os/exec"
)

// Toolchain invokes the OSS-Fuzz build infrastructure.
type Toolchain interface {
	// BuildFuzzers runs a full instrumented build of a project's fuzz
	// targets with extra environment overrides.
	BuildFuzzers(project, sanitizer string, extraEnv map[string]string) error

	// BuildImage builds a project's container image.
	BuildImage(project string, extraEnv map[string]string) error
}

// helperToolchain drives infra/helper.py inside an OSS-Fuzz checkout. The
// helper needs the full process environment, plus the overrides.
type helperToolchain struct {
	dir string
}

func (t *helperToolchain) run(
	extraEnv map[string]string, args ...string,
) error {
	cmd := exec.Command("python3", args...)
	cmd.Dir = t.dir
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Env = os.Environ()
	for k, v := range extraEnv {
		cmd.Env = append(cmd.Env, k+"="+v)
	}
	return cmd.Run()
}

func (t *helperToolchain) BuildFuzzers(
	project, sanitizer string, extraEnv map[string]string,
) error {
	return t.run(
		extraEnv,
		"infra/helper.py", "build_fuzzers", project,
		"--sanitizer", sanitizer,
	)
}

func (t *helperToolchain) BuildImage(
	project string, extraEnv map[string]string,
) error {
	return t.run(extraEnv, "infra/helper.py", "build_image", "--pull", project)
}
