package ossfuzz

import (
	log "github.com/sirupsen/logrus"
	"shanhu.io/misc/errcode"
)

// Benchmark identifies one fuzz-target generation task against a project.
type Benchmark struct {
	ID      string
	Project string
}

// PrepareBenchmarkImage stages a benchmark's project and builds its image,
// on top of the address-sanitizer cache when one exists.
func (b *Builder) PrepareBenchmarkImage(bm *Benchmark) (string, error) {
	return b.prepareImage(bm.Project, stagedProjectName(bm.ID))
}

// PrepareProjectImage stages a project by name and builds its image.
func (b *Builder) PrepareProjectImage(project string) (string, error) {
	return b.prepareImage(project, stagedProjectName(project))
}

func (b *Builder) prepareImage(project, generated string) (string, error) {
	if _, err := b.CreateProject(project, generated); err != nil {
		return "", err
	}

	if !b.env.cacheEnabled {
		log.Warnf("caching disabled when building image for %s", project)
	} else if b.IsImageCached(project, "address") {
		log.Infof("using cached instance for %s", project)
		if err := b.RewriteToCachedProject(
			project, generated, "address",
		); err != nil {
			return "", errcode.Annotate(err, "rewrite to cached project")
		}
		if _, err := b.PrepareBuild(project, "address", generated); err != nil {
			return "", errcode.Annotate(err, "prepare build")
		}
	} else {
		log.Warnf("no cached project image for %s", project)
	}

	return b.buildImage(generated)
}

// buildImage builds the staged project's container image and returns its
// image name.
func (b *Builder) buildImage(generated string) (string, error) {
	buildEnv := map[string]string{
		"FUZZING_LANGUAGE": b.ProjectLanguage(generated),
	}
	if err := b.env.toolchain.BuildImage(generated, buildEnv); err != nil {
		return "", errcode.Annotatef(
			err, "build project image for %q", generated,
		)
	}
	log.Infof("successfully built project image for %s", generated)
	return "gcr.io/oss-fuzz/" + generated, nil
}
