package config

// This file implements CLI flag parsing and help text.
// Flag values are captured into a side struct and applied after the config
// file and environment layers, so only flags the user actually passed
// override those layers.

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
)

// Returned by ParseFlags after --help or --version output has been written.
// Callers should exit successfully.
var (
	ErrHelpShown    = errors.New("help shown")
	ErrVersionShown = errors.New("version shown")
)

// flagValues holds raw flag values until they are layered onto Config.
type flagValues struct {
	configPath   string
	manifest     string
	folderSuffix string
	logFile      string
	skip         stringList
	dryRun       bool
	verbose      bool
	forceColor   bool
	noColor      bool
	showVersion  bool
	showHelp     bool
}

// ParseFlags parses args (without the program name) into cfg. Layering
// order: values already in cfg, then --config file, then environment, then
// explicitly passed flags. A wrong positional argument count is not an
// error: it sets cfg.ArgCountMismatch and the first positional, if any,
// still becomes the catalog path.
func ParseFlags(cfg *Config, args []string, version string) error {
	fs := flag.NewFlagSet("xcassetclean", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var v flagValues
	defineFlags(fs, &v)

	positional, err := parseInterspersed(fs, args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			PrintUsage(os.Stderr, version)
			return ErrHelpShown
		}
		return err
	}

	if v.showHelp {
		PrintUsage(os.Stderr, version)
		return ErrHelpShown
	}
	if v.showVersion {
		fmt.Fprintln(os.Stdout, "xcassetclean v"+version)
		return ErrVersionShown
	}

	if v.configPath != "" {
		if err := LoadFile(cfg, v.configPath); err != nil {
			return err
		}
	}
	if err := ApplyEnv(cfg); err != nil {
		return err
	}

	applySetFlags(fs, cfg, &v)
	parsePositionalArgs(positional, cfg)
	return nil
}

// parseInterspersed parses flags appearing anywhere in args, so
// "Images.xcassets --dry-run" honors the trailing flag. Everything after a
// "--" terminator is positional.
func parseInterspersed(fs *flag.FlagSet, args []string) ([]string, error) {
	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		rest := fs.Args()
		if len(rest) == 0 {
			return positional, nil
		}
		if consumed := len(args) - len(rest); consumed > 0 && args[consumed-1] == "--" {
			return append(positional, rest...), nil
		}
		positional = append(positional, rest[0])
		args = rest[1:]
	}
}

func defineFlags(fs *flag.FlagSet, v *flagValues) {
	fs.StringVar(&v.configPath, "config", "", "YAML config file")
	fs.StringVar(&v.manifest, "manifest", "", "Manifest filename inside each asset group")
	fs.StringVar(&v.folderSuffix, "folder-suffix", "", "Folder suffix stripped to get the base image name")
	fs.Var(&v.skip, "skip", "Skip directories matching glob (repeatable)")
	fs.BoolVar(&v.dryRun, "dry-run", false, "Preview only; do not rename or patch")
	fs.BoolVar(&v.dryRun, "n", false, "Same as --dry-run")
	fs.BoolVar(&v.verbose, "verbose", false, "Verbose output")
	fs.BoolVar(&v.verbose, "v", false, "Same as --verbose")
	fs.StringVar(&v.logFile, "log", "", "Append logs to file")
	fs.StringVar(&v.logFile, "l", "", "Same as --log")
	fs.BoolVar(&v.forceColor, "color", false, "Force colored logs")
	fs.BoolVar(&v.noColor, "no-color", false, "Disable colored logs")
	fs.BoolVar(&v.showVersion, "version", false, "Print version and exit")
	fs.BoolVar(&v.showVersion, "V", false, "Same as --version")
	fs.BoolVar(&v.showHelp, "help", false, "Show this help and exit")
	fs.BoolVar(&v.showHelp, "h", false, "Same as --help")
}

// applySetFlags copies only the flags present on the command line into cfg.
func applySetFlags(fs *flag.FlagSet, cfg *Config, v *flagValues) {
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "manifest":
			cfg.ManifestName = v.manifest
		case "folder-suffix":
			cfg.FolderSuffix = v.folderSuffix
		case "skip":
			cfg.Skip = append(cfg.Skip, v.skip...)
		case "dry-run", "n":
			cfg.DryRun = v.dryRun
		case "verbose", "v":
			cfg.Verbose = v.verbose
		case "log", "l":
			cfg.LogFile = v.logFile
		}
	})
	if v.noColor {
		cfg.ColorMode = ColorNever
	} else if v.forceColor {
		cfg.ColorMode = ColorAlways
	}
}

// parsePositionalArgs takes the catalog path from the first positional arg.
func parsePositionalArgs(args []string, cfg *Config) {
	cfg.ArgCountMismatch = len(args) != 1
	if len(args) > 0 {
		cfg.CatalogDir = NormalizeDirArg(args[0])
	}
}

// PrintUsage writes the help text to w. Column-aligned for readability.
func PrintUsage(w io.Writer, version string) {
	const col1 = 28 // width of "  -x, --long-name <arg>  "
	lines := []struct {
		flags string
		desc  string
	}{
		{"", "xcassetclean v" + version + " - image asset catalog filename normalizer"},
		{"", ""},
		{"Usage", ""},
		{"", ""},
		{"  xcassetclean [OPTIONS] /path/to/Images.xcassets", ""},
		{"", ""},
		{"Catalog", ""},
		{"  --manifest <name>", "Manifest filename (default: Contents.json)"},
		{"  --folder-suffix <suffix>", "Stripped from folder names (default: .imageset)"},
		{"  --skip <glob>", "Skip matching directories (repeatable)"},
		{"  --config <file>", "Load settings from YAML file"},
		{"", ""},
		{"Behavior", ""},
		{"  -n, --dry-run", "Preview only; do not rename or patch"},
		{"", ""},
		{"Display", ""},
		{"  --color", "Force colored logs"},
		{"  --no-color", "Disable colored logs"},
		{"  -v, --verbose", "Verbose output"},
		{"  -l, --log <path>", "Append logs to file"},
		{"", ""},
		{"Utility", ""},
		{"  -V, --version", "Print version and exit"},
		{"  -h, --help", "Show this help and exit"},
	}

	for _, l := range lines {
		if l.flags == "" && l.desc == "" {
			fmt.Fprintln(w)
			continue
		}
		if l.desc == "" {
			fmt.Fprintln(w, l.flags)
			continue
		}
		if l.flags == "" {
			fmt.Fprintln(w, l.desc)
			continue
		}
		padding := col1 - len(l.flags)
		if padding < 1 {
			padding = 1
		}
		fmt.Fprintf(w, "%s%*s%s\n", l.flags, padding, "", l.desc)
	}
}

// stringList is a repeatable string flag.
type stringList []string

func (s *stringList) String() string { return strings.Join(*s, ",") }
func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}
