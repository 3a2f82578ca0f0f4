package ossfuzz

import (
	"path"
	"path/filepath"
)

type env struct {
	ossFuzzDir     string
	cacheRegistry  string
	cacheEnabled   bool
	buildScriptDir string
	sanitizers     []string

	registry  Registry
	toolchain Toolchain
}

func (e *env) projectsDir() string {
	return filepath.Join(e.ossFuzzDir, "projects")
}

func (e *env) projectDir(name string) string {
	return filepath.Join(e.projectsDir(), name)
}

func (e *env) projectFile(name string, ps ...string) string {
	p := path.Join(ps...)
	return filepath.Join(e.projectDir(name), filepath.FromSlash(p))
}

// cacheImageRef derives the remote reference of the cached build image for
// a project and sanitizer. Pure function of its inputs; the (project,
// sanitizer) pair is the unique key space, so no collision handling exists.
func (e *env) cacheImageRef(project, sanitizer string) string {
	return path.Join(e.cacheRegistry, project+"-ofg-cached-"+sanitizer)
}
