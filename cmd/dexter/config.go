package main

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/dhamidi/dexter/dex"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"
)

var log = commonlog.GetLogger("dexter.cli")

// config is the on-disk configuration. Command line flags override it.
type config struct {
	Format    string `toml:"format"`
	Verbosity int    `toml:"verbosity"`
	Log       string `toml:"log"`
	HiddenAPI *bool  `toml:"hidden_api"`
	Verify    bool   `toml:"verify"`
	Jobs      int    `toml:"jobs"`
}

type globalOptions struct {
	offset     int64
	verbosity  int
	logPath    string
	configPath string
	hiddenAPI  bool

	cfg config
}

func defaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "dexter", "config.toml")
}

// loadConfig reads path. A missing file at the default location is not an
// error; an explicitly named one must exist.
func loadConfig(path string) (config, error) {
	var cfg config
	explicit := path != ""
	if !explicit {
		path = defaultConfigPath()
		if path == "" {
			return cfg, nil
		}
	}
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return config{}, nil
		}
		return config{}, errors.Wrapf(err, "read config %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		log.Warningf("ignoring unknown config keys in %s: %s", path, strings.Join(keys, ", "))
	}
	return cfg, nil
}

// load merges the config file under the flags and configures logging.
func (g *globalOptions) load(cmd *cobra.Command) error {
	cfg, err := loadConfig(g.configPath)
	if err != nil {
		return err
	}
	g.cfg = cfg

	flags := cmd.Flags()
	if !flags.Changed("verbose") {
		g.verbosity = cfg.Verbosity
	}
	if !flags.Changed("log") {
		g.logPath = cfg.Log
	}
	if !flags.Changed("hidden-api") && cfg.HiddenAPI != nil {
		g.hiddenAPI = *cfg.HiddenAPI
	}

	var path *string
	if g.logPath != "" {
		path = &g.logPath
	}
	commonlog.Configure(g.verbosity, path)
	return nil
}

func (g *globalOptions) jobs() int {
	if g.cfg.Jobs > 0 {
		return g.cfg.Jobs
	}
	return 4
}

func (g *globalOptions) decodeOptions(extra ...dex.Option) []dex.Option {
	opts := []dex.Option{dex.WithHiddenAPI(g.hiddenAPI)}
	if g.cfg.Verify {
		opts = append(opts, dex.WithVerifyChecksum(), dex.WithVerifySignature())
	}
	return append(opts, extra...)
}

// openDecoder opens path and reads the header of the container at the
// configured offset. The caller closes the returned file.
func (g *globalOptions) openDecoder(path string, extra ...dex.Option) (*dex.Decoder, *os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, errors.Wrap(err, "open dex file")
	}
	d, err := dex.NewDecoder(f, g.offset, g.decodeOptions(extra...)...)
	if err != nil {
		f.Close()
		return nil, nil, errors.Wrapf(err, "read %s", path)
	}
	return d, f, nil
}

func (g *globalOptions) parse(path string) (*dex.File, error) {
	d, f, err := g.openDecoder(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	file, err := d.Decode()
	if err != nil {
		return nil, errors.Wrapf(err, "decode %s", path)
	}
	log.Infof("decoded %s: %d classes", path, len(file.Classes))
	return file, nil
}
