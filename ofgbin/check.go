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
	"os"

	"shanhu.io/misc/errcode"
	"shanhu.io/text/lexing"
)

func cmdCheck(args []string) error {
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

	wd, err := os.Getwd()
	if err != nil {
		return errcode.Annotate(err, "get work dir")
	}

	b := c.builder()
	total := 0
	for _, project := range args {
		errs := b.CheckProject(project)
		if errs != nil {
			lexing.FprintErrs(os.Stderr, errs, wd)
			total += len(errs)
		}
	}
	if total > 0 {
		return errcode.InvalidArgf("check got %d errors", total)
	}
	return nil
}
