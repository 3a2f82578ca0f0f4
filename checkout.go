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
	"errors"
	"os"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"
	"shanhu.io/misc/errcode"
	"shanhu.io/misc/osutil"
)

const (
	ossFuzzRepo = "https://github.com/google/oss-fuzz"

	venvDir  = "venv"
	buildDir = "build"
)

var errCloneFailed = errors.New("git clone failed")

// Checkout is a local OSS-Fuzz checkout.
type Checkout struct {
	dir  string
	temp bool
}

// CloneOSSFuzz makes an OSS-Fuzz checkout at dir, cloning only when the
// directory does not exist yet. An empty dir clones into a fresh temporary
// directory that Remove later deletes.
func CloneOSSFuzz(dir string) (*Checkout, error) {
	temp := false
	if dir == "" {
		d, err := os.MkdirTemp("", "oss-fuzz-")
		if err != nil {
			return nil, errcode.Annotate(err, "make temp checkout dir")
		}
		dir = d
		temp = true
	}

	c := &Checkout{dir: dir, temp: temp}

	exist, err := osutil.IsDir(filepath.Join(dir, ".git"))
	if err != nil {
		return nil, errcode.Annotate(err, "check checkout dir")
	}
	if exist {
		return c, nil
	}

	retry := &RetryPolicy{Budgets: map[error]int{errCloneFailed: 3}}
	if err := retry.Run("clone oss-fuzz", c.clone); err != nil {
		return nil, err
	}
	return c, nil
}

// clone returns the bare errCloneFailed sentinel so the retry budget
// matches; the underlying error is logged instead.
func (c *Checkout) clone() error {
	err := runCmd("", "git", "clone", ossFuzzRepo, "--depth", "1", c.dir)
	if err != nil {
		log.Warnf("clone oss-fuzz into %s: %s", c.dir, err)
		return errCloneFailed
	}
	return nil
}

// Dir returns the checkout directory.
func (c *Checkout) Dir() string { return c.dir }

// HeadCommit returns the commit the checkout is at.
func (c *Checkout) HeadCommit() (string, error) {
	out, err := runCmdOutput(
		c.dir, "git", "show", "HEAD", "-s", "--format=%H",
	)
	if err != nil {
		return "", errcode.Annotate(err, "get HEAD commit")
	}
	return strings.TrimSpace(string(out)), nil
}

// Clean resets the checkout, keeping the venv and build directories.
func (c *Checkout) Clean() error {
	err := runCmd(c.dir, "git", "clean", "-fxd", "-e", venvDir, "-e", buildDir)
	if err != nil {
		return errcode.Annotate(err, "git clean")
	}
	return nil
}

// SyncProjects copies extra project definitions from a data directory into
// the checkout's projects directory.
func (c *Checkout) SyncProjects(dataDir string) error {
	src := filepath.Join(dataDir, "projects")
	entries, err := os.ReadDir(src)
	if err != nil {
		return errcode.Annotate(err, "list data projects")
	}

	for _, ent := range entries {
		if !ent.IsDir() {
			continue
		}
		from := filepath.Join(src, ent.Name())
		to := filepath.Join(c.dir, "projects", ent.Name())
		log.Infof("copying %s to %s", from, to)
		if err := copyDir(from, to); err != nil {
			return errcode.Annotatef(err, "copy project %q", ent.Name())
		}
	}
	return nil
}

// Postprocess prepares the checkout for build script execution: writes a
// .gcloudignore to keep cloud submissions small and bootstraps the helper
// virtualenv when one is not already active.
func (c *Checkout) Postprocess() error {
	if err := c.writeGcloudIgnore(); err != nil {
		return err
	}

	exist, err := osutil.IsDir(filepath.Join(c.dir, venvDir))
	if err != nil {
		return errcode.Annotate(err, "check venv")
	}
	if exist || os.Getenv("VIRTUAL_ENV") != "" {
		return nil
	}

	if err := runCmd(c.dir, "python3", "-m", "venv", venvDir); err != nil {
		return errcode.Annotate(err, "create venv")
	}
	err = runCmd(
		c.dir, "./"+venvDir+"/bin/pip",
		"install", "-r", "infra/build/functions/requirements.txt",
	)
	if err != nil {
		return errcode.Annotate(err, "install helper requirements")
	}
	return nil
}

func (c *Checkout) writeGcloudIgnore() error {
	ignores := []string{"__pycache__", buildDir, ".git", ".pytest_cache", venvDir}
	content := strings.Join(ignores, "\n") + "\n"
	f := filepath.Join(c.dir, ".gcloudignore")
	if err := os.WriteFile(f, []byte(content), 0644); err != nil {
		return errcode.Annotate(err, "write .gcloudignore")
	}
	return nil
}

// Remove deletes a temporary checkout. Checkouts the caller pointed us at
// are never deleted, and permission problems are logged, not fatal.
func (c *Checkout) Remove() {
	if !c.temp {
		return
	}
	if err := os.RemoveAll(c.dir); err != nil {
		log.Warnf("remove checkout %s: %s", c.dir, err)
	}
}
