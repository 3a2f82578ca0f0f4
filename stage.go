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
	"encoding/hex"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"shanhu.io/misc/errcode"
)

// stagedProjectName derives a fresh, tag-legal name for one build attempt
// of a project. Distinct calls never collide, so concurrent attempts for
// the same project never share a directory.
func stagedProjectName(base string) string {
	u := uuid.New()
	return rectifyDockerTag(base + "-" + hex.EncodeToString(u[:]))
}

// CreateProject replicates an existing project's build definition under a
// new name and returns the new directory. It is a no-op when the
// destination already exists.
func (b *Builder) CreateProject(project, generated string) (string, error) {
	dest := b.env.projectDir(generated)
	if _, err := os.Stat(dest); err == nil {
		log.Infof("project %s already exists", dest)
		return dest, nil
	}

	if err := copyDir(b.env.projectDir(project), dest); err != nil {
		return "", errcode.Annotatef(err, "replicate project %q", project)
	}
	return dest, nil
}

// StageProject creates a uniquely named, disposable copy of a project's
// build definition for one build attempt and returns its directory.
func (b *Builder) StageProject(project string) (string, error) {
	return b.CreateProject(project, stagedProjectName(project))
}

func copyDir(src, dest string) error {
	return filepath.WalkDir(src, func(
		p string, d fs.DirEntry, err error,
	) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, p)
		if err != nil {
			return err
		}
		target := filepath.Join(dest, rel)

		if d.IsDir() {
			info, err := d.Info()
			if err != nil {
				return err
			}
			return os.MkdirAll(target, info.Mode().Perm())
		}
		return copyFile(p, target)
	})
}

func copyFile(src, dest string) error {
	info, err := os.Stat(src)
	if err != nil {
		return err
	}
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(
		dest, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm(),
	)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
