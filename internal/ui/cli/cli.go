package cli

import "flag"

const versionString = "1.0.0"
const defaultConfigPath = "./data/config/crosscheck.toml"

type cliOptions struct {
	configPath   string
	bundle       string
	watch        bool
	ui           bool
	format       string
	out          string
	showHistory  bool
	historyLimit int
	verbose      bool
	version      bool
	args         []string
}

func parseOptions(args []string) (cliOptions, error) {
	var opts cliOptions
	fs := flag.NewFlagSet("crosscheck", flag.ContinueOnError)

	fs.StringVar(&opts.configPath, "config", defaultConfigPath, "Path to config file")
	fs.StringVar(&opts.bundle, "bundle", "", "Task bundle to analyze (overrides paths.bundle_paths)")
	fs.BoolVar(&opts.watch, "watch", false, "Re-analyze whenever a bundle file changes")
	fs.BoolVar(&opts.ui, "ui", false, "Review findings in the terminal UI")
	fs.StringVar(&opts.format, "format", "summary", "Output format: summary, json, markdown or tsv")
	fs.StringVar(&opts.out, "out", "", "Write the report to this path instead of stdout")
	fs.BoolVar(&opts.showHistory, "history", false, "Print recent run history and exit")
	fs.IntVar(&opts.historyLimit, "history-limit", 10, "Number of runs shown by --history")
	fs.BoolVar(&opts.verbose, "verbose", false, "Enable verbose logging")
	fs.BoolVar(&opts.version, "version", false, "Print version and exit")

	if err := fs.Parse(args); err != nil {
		return cliOptions{}, err
	}

	opts.args = fs.Args()
	return opts, nil
}
