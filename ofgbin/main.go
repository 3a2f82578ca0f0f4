package ofgbin

import (
	"shanhu.io/misc/subcmd"
)

func cmd() *subcmd.List {
	c := subcmd.New()
	c.Add("clone", "clones an oss-fuzz checkout", cmdClone)
	c.Add("cache", "builds cached images for projects", cmdCache)
	c.Add("stage", "stages a disposable project copy", cmdStage)
	c.Add("build-image", "builds a project image", cmdBuildImage)
	c.Add("check", "checks project build definitions", cmdCheck)
	c.Add("list", "lists c-family projects", cmdList)
	return c
}

// Main is the entrance for the ofg binary.
func Main() { cmd().Main() }
