package ossfuzz

import (
	"strings"

	"shanhu.io/virgo/dock"
)

// imageSum captures an image's ID and its digest within a repository.
type imageSum struct {
	ID     string
	Digest string
}

func newImageSum(info *dock.ImageInfo, repo string) *imageSum {
	sum := &imageSum{ID: info.ID}
	if repo == "" {
		return sum
	}

	digestPrefix := repo + "@"
	for _, d := range info.RepoDigests {
		if strings.HasPrefix(d, digestPrefix) {
			sum.Digest = strings.TrimPrefix(d, digestPrefix)
			break
		}
	}
	return sum
}
