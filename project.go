package ossfuzz

import (
	"os"
	"sort"
	"strings"

	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
	"shanhu.io/misc/errcode"
)

const projectYAMLName = "project.yaml"

type projectMeta struct {
	Language string `yaml:"language"`
	MainRepo string `yaml:"main_repo"`
}

func (b *Builder) readProjectMeta(project string) (*projectMeta, error) {
	bs, err := os.ReadFile(b.env.projectFile(project, projectYAMLName))
	if err != nil {
		return nil, err
	}
	meta := new(projectMeta)
	if err := yaml.Unmarshal(bs, meta); err != nil {
		return nil, errcode.Annotate(err, "parse project.yaml")
	}
	return meta, nil
}

// ProjectLanguage returns a project's declared language, assuming C++ when
// the descriptor is missing or silent.
func (b *Builder) ProjectLanguage(project string) string {
	meta, err := b.readProjectMeta(project)
	if err != nil {
		log.Warnf("no project.yaml for %s, assuming C++: %s", project, err)
		return "C++"
	}
	if meta.Language == "" {
		return "C++"
	}
	return meta.Language
}

// ProjectRepository returns a project's main repository URL, or an empty
// string when the descriptor is missing.
func (b *Builder) ProjectRepository(project string) string {
	meta, err := b.readProjectMeta(project)
	if err != nil {
		log.Warnf("no project.yaml for %s: %s", project, err)
		return ""
	}
	return meta.MainRepo
}

// ListCProjects returns all C-family projects in the checkout, sorted.
func (b *Builder) ListCProjects() ([]string, error) {
	entries, err := os.ReadDir(b.env.projectsDir())
	if err != nil {
		return nil, errcode.Annotate(err, "list projects")
	}

	var projects []string
	for _, ent := range entries {
		if !ent.IsDir() {
			continue
		}
		bs, err := os.ReadFile(
			b.env.projectFile(ent.Name(), projectYAMLName),
		)
		if err != nil {
			continue
		}
		if strings.Contains(string(bs), "language: c") {
			projects = append(projects, ent.Name())
		}
	}
	sort.Strings(projects)
	return projects, nil
}
