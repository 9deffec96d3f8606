package main

import (
	"flag"
	"fmt"
	"os"
	"runtime"

	"github.com/BurntSushi/toml"
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	"jdeob/internal/classfile"
)

var log = commonlog.GetLogger("jdeob")

// Config is the jdeob.toml file. Flags given on the command line win.
type Config struct {
	Mode    string `toml:"mode"`
	Jobs    int    `toml:"jobs"`
	Out     string `toml:"out"`
	Verbose int    `toml:"verbose"`
}

func defaultConfig() Config {
	return Config{
		Mode: classfile.ModeBestEffort.String(),
		Jobs: runtime.NumCPU(),
		Out:  "out",
	}
}

// loadConfig decodes path over the defaults, so missing keys keep them.
func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	if cfg.Jobs < 1 {
		cfg.Jobs = 1
	}
	return cfg, nil
}

// common carries the flags every subcommand accepts.
type common struct {
	class   string
	config  string
	mode    string
	verbose int

	cfg  Config
	opts classfile.Options
}

func addCommon(fs *flag.FlagSet) *common {
	c := &common{}
	fs.StringVar(&c.class, "class", "", "path to a .class file")
	fs.StringVar(&c.config, "config", "", "path to jdeob.toml")
	fs.StringVar(&c.mode, "mode", "", "strict or best-effort")
	fs.IntVar(&c.verbose, "v", 0, "log verbosity")
	return c
}

// setup merges config and flags, configures logging and loads the class.
func (c *common) setup() (*classfile.ClassFile, error) {
	c.cfg = defaultConfig()
	if c.config != "" {
		cfg, err := loadConfig(c.config)
		if err != nil {
			return nil, err
		}
		c.cfg = cfg
	}
	if c.mode != "" {
		c.cfg.Mode = c.mode
	}
	if c.verbose > 0 {
		c.cfg.Verbose = c.verbose
	}
	commonlog.Configure(c.cfg.Verbose, nil)

	mode, err := classfile.ParseMode(c.cfg.Mode)
	if err != nil {
		return nil, err
	}
	c.opts = classfile.Options{Mode: mode}

	if c.class == "" {
		return nil, fmt.Errorf("--class is required")
	}
	return loadClass(c.class, c.opts)
}

func loadClass(path string, opts classfile.Options) (*classfile.ClassFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cf, err := classfile.Parse(data, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	log.Infof("%s: %s, %d methods, version %d.%d", path, cf.Name(), cf.Methods.Len(), cf.Major, cf.Minor)
	for _, d := range cf.Diags.Items() {
		log.Warningf("%s: %s", path, d)
	}
	return cf, nil
}
