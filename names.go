package ossfuzz

import (
	"regexp"
)

// cacheContainerName is the container name a cache-enabled build saves its
// working container under while a cached image is being produced.
func cacheContainerName(project string) string {
	return "gcr.io.oss-fuzz." + project + "_cache"
}

var (
	tagScopeSep  = regexp.MustCompile(`::`)
	tagIllegal   = regexp.MustCompile(`[^\w_.]`)
	tagRepeatSep = regexp.MustCompile(`[-_]{2,}`)
)

// rectifyDockerTag rewrites a name into the docker tag alphabet. Docker
// rejects tags containing characters outside [\w.-] as well as -_ and _-
// runs.
func rectifyDockerTag(tag string) string {
	t := tagScopeSep.ReplaceAllString(tag, "-")
	t = tagIllegal.ReplaceAllString(t, "-")
	return tagRepeatSep.ReplaceAllString(t, "-")
}
