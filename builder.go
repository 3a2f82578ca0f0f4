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
	"shanhu.io/virgo/dock"
)

const (
	// defaultCacheRegistry is the registry root that cached build images
	// are pushed to and pulled from.
	defaultCacheRegistry = "us-central1-docker.pkg.dev/oss-fuzz/oss-fuzz-gen"

	// defaultBuildScriptDir holds per-project build scripts that
	// cooperate with the container-saving convention. A project without
	// a script here is never cached.
	defaultBuildScriptDir = "fuzzer_build_script"
)

// defaultSanitizers are the build variants that get cached images.
var defaultSanitizers = []string{"address", "coverage"}

// Config provides the configuration to start a builder.
type Config struct {
	OSSFuzzDir string // OSS-Fuzz checkout directory.

	CacheRegistry  string // Registry root for cached build images.
	EnableCaching  bool   // Use cached build images when available.
	BuildScriptDir string // Directory of per-project cache build scripts.

	// Sanitizers to cache. Defaults to address and coverage.
	Sanitizers []string

	// Registry defaults to the local docker daemon and CLI.
	Registry Registry

	// Toolchain defaults to infra/helper.py inside OSSFuzzDir.
	Toolchain Toolchain
}

// Builder prepares cached build images and cache-aware project builds.
type Builder struct {
	env *env
}

// NewBuilder creates a new builder rooted at an OSS-Fuzz checkout.
func NewBuilder(config *Config) *Builder {
	registry := config.Registry
	if registry == nil {
		registry = newDockerRegistry(dock.NewUnixClient(""))
	}
	toolchain := config.Toolchain
	if toolchain == nil {
		toolchain = &helperToolchain{dir: config.OSSFuzzDir}
	}

	cacheRegistry := config.CacheRegistry
	if cacheRegistry == "" {
		cacheRegistry = defaultCacheRegistry
	}
	buildScriptDir := config.BuildScriptDir
	if buildScriptDir == "" {
		buildScriptDir = defaultBuildScriptDir
	}
	sanitizers := config.Sanitizers
	if len(sanitizers) == 0 {
		sanitizers = defaultSanitizers
	}

	return &Builder{env: &env{
		ossFuzzDir:     config.OSSFuzzDir,
		cacheRegistry:  cacheRegistry,
		cacheEnabled:   config.EnableCaching,
		buildScriptDir: buildScriptDir,
		sanitizers:     sanitizers,
		registry:       registry,
		toolchain:      toolchain,
	}}
}

// Dir returns the OSS-Fuzz checkout directory this builder works in.
func (b *Builder) Dir() string { return b.env.ossFuzzDir }
