package ofgbin

import (
	"github.com/caarlos0/env/v11"
	"shanhu.io/misc/errcode"
	"shanhu.io/misc/flagutil"

	ossfuzz "github.com/Svetankova/oss-fuzz-gen"
)

var cmdFlags = flagutil.NewFactory("ofg")

// config is the environment-driven configuration shared by all commands.
// Flags layer on top of it.
type config struct {
	OSSFuzzDir     string `env:"OSS_FUZZ_DIR"`
	DataDir        string `env:"OSS_FUZZ_DATA_DIR"`
	UseCaching     bool   `env:"OFG_USE_CACHING" envDefault:"true"`
	CleanUp        bool   `env:"OFG_CLEAN_UP_OSS_FUZZ" envDefault:"true"`
	CacheRegistry  string `env:"OFG_CACHE_REGISTRY"`
	BuildScriptDir string `env:"OFG_BUILD_SCRIPT_DIR"`
}

func loadConfig() (*config, error) {
	c := new(config)
	if err := env.Parse(c); err != nil {
		return nil, errcode.Annotate(err, "parse environment")
	}
	return c, nil
}

func declareBuildFlags(flags *flagutil.FlagSet, c *config) {
	flags.StringVar(
		&c.OSSFuzzDir, "oss_fuzz_dir", c.OSSFuzzDir, "oss-fuzz checkout",
	)
	flags.StringVar(
		&c.CacheRegistry, "cache_registry", c.CacheRegistry,
		"registry root for cached build images",
	)
	flags.StringVar(
		&c.BuildScriptDir, "build_script_dir", c.BuildScriptDir,
		"directory of per-project cache build scripts",
	)
	flags.BoolVar(
		&c.UseCaching, "use_caching", c.UseCaching,
		"use cached build images when available",
	)
}

func (c *config) builder() *ossfuzz.Builder {
	return ossfuzz.NewBuilder(&ossfuzz.Config{
		OSSFuzzDir:     c.OSSFuzzDir,
		CacheRegistry:  c.CacheRegistry,
		EnableCaching:  c.UseCaching,
		BuildScriptDir: c.BuildScriptDir,
	})
}
