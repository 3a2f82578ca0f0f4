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
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	log "github.com/sirupsen/logrus"
	"shanhu.io/misc/errcode"
	"shanhu.io/misc/osutil"
	"shanhu.io/text/lexing"
)

const (
	dockerfileName     = "Dockerfile"
	originalDockerfile = "Dockerfile_original"
)

func cachedDockerfileName(sanitizer string) string {
	return fmt.Sprintf("Dockerfile_%s_cached", sanitizer)
}

// baseBuilderFrom matches the FROM line pinning the stock OSS-Fuzz build
// base image.
var baseBuilderFrom = regexp.MustCompile(
	`FROM gcr\.io/oss-fuzz-base/base-builder.*`,
)

type directiveKind int

const (
	directiveOther directiveKind = iota
	directiveArg
	directiveFrom
	directiveCopy
)

// directive is one line of a build definition, classified by its leading
// keyword.
type directive struct {
	text string
	kind directiveKind
}

func parseDirectives(content string) []directive {
	lines := strings.Split(content, "\n")
	dirs := make([]directive, 0, len(lines))
	for _, line := range lines {
		d := directive{text: line}
		switch {
		case strings.HasPrefix(line, "ARG"):
			d.kind = directiveArg
		case strings.HasPrefix(line, "FROM"):
			d.kind = directiveFrom
		case strings.HasPrefix(line, "COPY"):
			d.kind = directiveCopy
		}
		dirs = append(dirs, d)
	}
	return dirs
}

// keepLines selects the lines a cached build still needs: the first ARG
// (the cache image binding), the first FROM, and the last two COPY steps.
// The last two COPY steps are assumed to copy the generated build script
// and the fuzz harness, no matter how many COPY steps came before.
func keepLines(dirs []directive) map[int]bool {
	argLine, fromLine := -1, -1
	copyFuzzerLine, copyBuildLine := -1, -1
	for i, d := range dirs {
		switch d.kind {
		case directiveArg:
			if argLine == -1 {
				argLine = i
			}
		case directiveFrom:
			if fromLine == -1 {
				fromLine = i
			}
		case directiveCopy:
			copyFuzzerLine = copyBuildLine
			copyBuildLine = i
		}
	}

	keep := make(map[int]bool)
	for _, i := range []int{argLine, fromLine, copyFuzzerLine, copyBuildLine} {
		if i >= 0 {
			keep[i] = true
		}
	}
	return keep
}

// ensureOriginalDockerfile backs up the project's Dockerfile exactly once.
// Rewrites always derive from this backup, never from a previous rewrite.
func (b *Builder) ensureOriginalDockerfile(folder string) (string, error) {
	orig := filepath.Join(folder, originalDockerfile)
	ok, err := osutil.IsRegular(orig)
	if err != nil {
		return "", errcode.Annotate(err, "check original dockerfile")
	}
	if !ok {
		src := filepath.Join(folder, dockerfileName)
		if err := copyFile(src, orig); err != nil {
			return "", errcode.Annotate(err, "back up dockerfile")
		}
	}
	return orig, nil
}

// RewriteToCachedProject rewrites a staged project's Dockerfile so that the
// next build replays only the harness and build-script copies on top of the
// cached image. The result lands in Dockerfile_<sanitizer>_cached; a second
// call for the same sanitizer returns without re-transforming.
func (b *Builder) RewriteToCachedProject(
	project, generatedProject, sanitizer string,
) error {
	folder := b.env.projectDir(generatedProject)

	cached := filepath.Join(folder, cachedDockerfileName(sanitizer))
	ok, err := osutil.IsRegular(cached)
	if err != nil {
		return errcode.Annotate(err, "check cached dockerfile")
	}
	if ok {
		log.Infof("%s already converted for %s", generatedProject, sanitizer)
		return nil
	}

	orig, err := b.ensureOriginalDockerfile(folder)
	if err != nil {
		return err
	}
	bs, err := os.ReadFile(orig)
	if err != nil {
		return errcode.Annotate(err, "read original dockerfile")
	}

	argLine := "ARG CACHE_IMAGE=" + b.env.cacheImageRef(project, sanitizer)
	content := argLine + "\n" + string(bs)
	content = baseBuilderFrom.ReplaceAllLiteralString(
		content, "FROM $CACHE_IMAGE",
	)

	dirs := parseDirectives(content)
	keep := keepLines(dirs)

	out := new(strings.Builder)
	for i, d := range dirs {
		if keep[i] {
			fmt.Fprintf(out, "%s\n", d.text)
		} else {
			fmt.Fprintf(out, "# %s\n", d.text)
		}
	}

	if err := os.WriteFile(cached, []byte(out.String()), 0644); err != nil {
		return errcode.Annotate(err, "write cached dockerfile")
	}
	log.Infof("rewrote %s for cached %s builds", generatedProject, sanitizer)
	return nil
}

// PrepareBuild selects the Dockerfile a staged project's next build attempt
// uses and returns its path. With caching disabled the staged Dockerfile is
// left untouched. Otherwise the cached rewrite is selected when the cache
// image exists, and the original backup when it does not. Safe to call once
// per build attempt; the active path is always left buildable.
func (b *Builder) PrepareBuild(
	project, sanitizer, generatedProject string,
) (string, error) {
	folder := b.env.projectDir(generatedProject)
	active := filepath.Join(folder, dockerfileName)
	if !b.env.cacheEnabled {
		return active, nil
	}

	orig, err := b.ensureOriginalDockerfile(folder)
	if err != nil {
		return "", err
	}

	if b.IsImageCached(project, sanitizer) {
		log.Infof("using cached dockerfile for %s", generatedProject)
		if err := b.RewriteToCachedProject(
			project, generatedProject, sanitizer,
		); err != nil {
			return "", err
		}
		cached := filepath.Join(folder, cachedDockerfileName(sanitizer))
		if err := copyFile(cached, active); err != nil {
			return "", errcode.Annotate(err, "select cached dockerfile")
		}
		return active, nil
	}

	log.Infof("using original dockerfile for %s", generatedProject)
	if err := copyFile(orig, active); err != nil {
		return "", errcode.Annotate(err, "select original dockerfile")
	}
	return active, nil
}

// CheckProject inspects a staged project's build definition for shapes the
// cache rewrite cannot handle well: a missing base-image line, or fewer
// than two COPY steps for the build script and harness. The rewrite itself
// stays permissive; these diagnostics let a caller bail out early instead.
func (b *Builder) CheckProject(generatedProject string) []*lexing.Error {
	f := b.env.projectFile(generatedProject, dockerfileName)
	bs, err := os.ReadFile(f)
	if err != nil {
		return lexing.SingleErr(errcode.Annotate(err, "read dockerfile"))
	}

	froms, copies := 0, 0
	for _, d := range parseDirectives(string(bs)) {
		switch d.kind {
		case directiveFrom:
			froms++
		case directiveCopy:
			copies++
		}
	}

	errList := lexing.NewErrorList()
	if froms == 0 {
		errList.Errorf(
			nil, "%s: no FROM line to rebase onto the cache image", f,
		)
	}
	if copies < 2 {
		errList.Errorf(
			nil, "%s: %d COPY lines; the cache rewrite keeps the last two",
			f, copies,
		)
	}
	return errList.Errs()
}
