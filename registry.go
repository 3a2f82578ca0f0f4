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
	log "github.com/sirupsen/logrus"
	"shanhu.io/misc/errcode"
	"shanhu.io/virgo/dock"
)

// Registry is the container image store the cache lives in. Pull and
// Inspect operate on remote references; Commit and RemoveContainer operate
// on the local daemon.
type Registry interface {
	// Pull fetches an image reference into the local daemon.
	Pull(ref string) error

	// Inspect checks that an image reference exists in the remote
	// registry. A nil return means the image is present.
	Inspect(ref string) error

	// Commit snapshots a local container as an image.
	Commit(container, ref string) error

	// RemoveContainer deletes a local container.
	RemoveContainer(name string) error
}

// dockerRegistry talks to the local docker daemon for image pulls, and to
// the docker CLI for the operations the daemon API does not expose.
type dockerRegistry struct {
	dock *dock.Client
}

func newDockerRegistry(c *dock.Client) *dockerRegistry {
	return &dockerRegistry{dock: c}
}

func (r *dockerRegistry) Pull(ref string) error {
	repo, tag := dock.ParseImageTag(ref)
	if tag == "" {
		tag = "latest"
	}
	if err := dock.PullImage(r.dock, repo, tag); err != nil {
		return errcode.Annotate(err, "pull image")
	}
	return nil
}

// Inspect queries the remote manifest. Manifest inspection has no daemon
// endpoint, so this goes through the docker CLI.
func (r *dockerRegistry) Inspect(ref string) error {
	return runCmdQuiet("", "docker", "manifest", "inspect", ref)
}

func (r *dockerRegistry) Commit(container, ref string) error {
	if err := runCmd("", "docker", "commit", container, ref); err != nil {
		return errcode.Annotate(err, "commit container")
	}

	info, err := dock.InspectImage(r.dock, ref)
	if err != nil {
		return errcode.Annotate(err, "inspect committed image")
	}
	repo, _ := dock.ParseImageTag(ref)
	sum := newImageSum(info, repo)
	log.Infof("committed %s as %s", container, sum.ID)
	return nil
}

func (r *dockerRegistry) RemoveContainer(name string) error {
	return runCmd("", "docker", "container", "rm", name)
}
