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

package ofgbin

import (
	"fmt"
	"strings"

	"shanhu.io/misc/errcode"
)

func cmdCache(args []string) error {
	c, err := loadConfig()
	if err != nil {
		return err
	}
	flags := cmdFlags.New()
	declareBuildFlags(flags, c)
	args = flags.ParseArgs(args)

	if len(args) == 0 {
		return errcode.InvalidArgf("no projects given")
	}

	b := c.builder()
	for _, project := range args {
		cached := b.EnsureCached(project)
		if len(cached) == 0 {
			fmt.Printf("%s: no cached images\n", project)
			continue
		}
		fmt.Printf("%s: cached %s\n", project, strings.Join(cached, " "))
	}
	return nil
}

func cmdBuildImage(args []string) error {
	c, err := loadConfig()
	if err != nil {
		return err
	}
	flags := cmdFlags.New()
	declareBuildFlags(flags, c)
	args = flags.ParseArgs(args)

	if len(args) != 1 {
		return errcode.InvalidArgf("expects exactly one project")
	}

	img, err := c.builder().PrepareProjectImage(args[0])
	if err != nil {
		return errcode.Annotatef(err, "build image for %q", args[0])
	}
	fmt.Println(img)
	return nil
}
