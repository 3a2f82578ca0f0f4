package ossfuzz

import (
	"io"
	"os"
	"os/exec"

	"shanhu.io/misc/osutil"
)

type execJob struct {
	dir   string
	bin   string
	args  []string
	out   io.Writer
	quiet bool
}

func (j *execJob) command() *exec.Cmd {
	cmd := exec.Command(j.bin, j.args...)
	cmd.Dir = j.dir
	if j.quiet {
		cmd.Stdout = io.Discard
		cmd.Stderr = io.Discard
	} else {
		if j.out == nil {
			cmd.Stdout = os.Stdout
		} else {
			cmd.Stdout = j.out
		}
		cmd.Stderr = os.Stderr
	}
	osutil.CmdCopyEnv(cmd, "HOME")
	osutil.CmdCopyEnv(cmd, "PATH")
	osutil.CmdCopyEnv(cmd, "DOCKER_HOST")
	osutil.CmdCopyEnv(cmd, "DOCKER_CONFIG")
	return cmd
}

func runCmd(dir, bin string, args ...string) error {
	j := &execJob{
		dir:  dir,
		bin:  bin,
		args: args,
	}
	return j.command().Run()
}

func runCmdQuiet(dir, bin string, args ...string) error {
	j := &execJob{
		dir:   dir,
		bin:   bin,
		args:  args,
		quiet: true,
	}
	return j.command().Run()
}

func runCmdOutput(dir, bin string, args ...string) ([]byte, error) {
	j := &execJob{
		dir:  dir,
		bin:  bin,
		args: args,
	}
	cmd := j.command()
	cmd.Stdout = nil
	return cmd.Output()
}
