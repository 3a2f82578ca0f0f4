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

	"shanhu.io/misc/errcode"

	ossfuzz "github.com/Svetankova/oss-fuzz-gen"
)

func cmdClone(args []string) error {
	c, err := loadConfig()
	if err != nil {
		return err
	}
	flags := cmdFlags.New()
	declareBuildFlags(flags, c)
	flags.StringVar(&c.DataDir, "data_dir", c.DataDir, "extra projects dir")
	flags.ParseArgs(args)

	checkout, err := ossfuzz.CloneOSSFuzz(c.OSSFuzzDir)
	if err != nil {
		return errcode.Annotate(err, "clone oss-fuzz")
	}

	if c.CleanUp {
		if err := checkout.Clean(); err != nil {
			return errcode.Annotate(err, "clean checkout")
		}
	}
	if c.DataDir != "" {
		if err := checkout.SyncProjects(c.DataDir); err != nil {
			return errcode.Annotate(err, "sync projects")
		}
	}
	if err := checkout.Postprocess(); err != nil {
		return errcode.Annotate(err, "postprocess checkout")
	}

	commit, err := checkout.HeadCommit()
	if err != nil {
		return err
	}
	fmt.Printf("%s at %s\n", checkout.Dir(), commit)
	return nil
}
