// Copyright (C) 2024  OSS-Fuzz-gen Authors.
//
// This program is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the
// Free Software Foundation, either version 3 of the License, or (at your
// option) any later version.
//
// This program is distributed in the hope that it will be useful, but WITHOUT
// ANY WARRANTY; without even the implied warranty of MERCHANTABILITY or
// FITNESS FOR A PARTICULAR PURPOSE.  See the GNU Affero General Public License
// for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package ossfuzz

import (
	"path/filepath"

	log "github.com/sirupsen/logrus"
	"shanhu.io/misc/osutil"
	"shanhu.io/misc/strutil"
)

// saveContainersEnv directs the build toolchain to save its working
// container under the given name after a successful build.
const saveContainersEnv = "OSS_FUZZ_SAVE_CONTAINERS_NAME"

// IsImageCached reports whether a cached build image exists for a project
// and sanitizer. Any lookup failure counts as a miss: an unreachable
// registry and an absent image both mean the same fallback, a full build.
func (b *Builder) IsImageCached(project, sanitizer string) bool {
	return b.env.registry.Inspect(b.env.cacheImageRef(project, sanitizer)) == nil
}

func (b *Builder) hasCacheBuildScript(project string) bool {
	ok, err := osutil.IsRegular(filepath.Join(b.env.buildScriptDir, project))
	if err != nil {
		return false
	}
	return ok
}

// EnsureCached makes cached build images exist for a project, one per
// configured sanitizer, and returns the sanitizers that ended up cached.
// A project without a cache build script is skipped entirely; a failure
// for one sanitizer never aborts the others.
func (b *Builder) EnsureCached(project string) []string {
	if !b.hasCacheBuildScript(project) {
		log.Infof("no cache build script for %s", project)
		return nil
	}
	log.Infof("%s has a cache build script", project)

	container := cacheContainerName(project)

	var cached []string
	for _, sanitizer := range b.env.sanitizers {
		if b.ensureSanitizerCached(project, sanitizer, container) {
			cached = append(cached, sanitizer)
		}
	}
	return cached
}

func (b *Builder) ensureSanitizerCached(
	project, sanitizer, container string,
) bool {
	if b.IsImageCached(project, sanitizer) {
		log.Infof(
			"%s::%s is already cached, reusing existing cache",
			project, sanitizer,
		)
		return true
	}

	ref := b.env.cacheImageRef(project, sanitizer)

	// Pull first. A failed pull only means the image must be built, and
	// a pull may also fail silently, so re-check either way.
	if err := b.env.registry.Pull(ref); err != nil {
		log.Infof("failed pulling cache image for %s: %s", project, err)
	}
	if b.IsImageCached(project, sanitizer) {
		log.Infof("pulled cache image for %s::%s", project, sanitizer)
		return true
	}

	buildEnv := map[string]string{saveContainersEnv: container}
	if err := b.env.toolchain.BuildFuzzers(
		project, sanitizer, buildEnv,
	); err != nil {
		log.Warnf(
			"failed to build fuzzers for %s::%s: %s",
			project, sanitizer, err,
		)
		return false
	}

	if err := b.env.registry.Commit(container, ref); err != nil {
		log.Warnf("could not commit cache container for %s: %s", project, err)
		return false
	}
	log.Infof("created cached image %s", ref)

	// Cleanup is best-effort.
	if err := b.env.registry.RemoveContainer(container); err != nil {
		log.Warnf("could not remove container %s: %s", container, err)
	}
	return true
}

// PrepareCachedImages builds cached images ahead of time for every project
// in a benchmark set.
func (b *Builder) PrepareCachedImages(targets []*Benchmark) {
	projects := make(map[string]bool)
	for _, t := range targets {
		projects[t.Project] = true
	}

	log.Infof("preparing cache for %d projects", len(projects))
	for _, project := range strutil.SortedList(projects) {
		b.EnsureCached(project)
	}
}
