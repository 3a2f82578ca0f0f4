package ofgbin

import (
	"fmt"

	"shanhu.io/misc/errcode"
)

func cmdStage(args []string) error {
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
		dir, err := b.StageProject(project)
		if err != nil {
			return errcode.Annotatef(err, "stage %q", project)
		}
		fmt.Println(dir)
	}
	return nil
}

func cmdList(args []string) error {
	c, err := loadConfig()
	if err != nil {
		return err
	}
	flags := cmdFlags.New()
	declareBuildFlags(flags, c)
	flags.ParseArgs(args)

	projects, err := c.builder().ListCProjects()
	if err != nil {
		return err
	}
	for _, p := range projects {
		fmt.Println(p)
	}
	return nil
}
