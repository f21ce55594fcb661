package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/bamsammich/wrench/internal/config"
	"github.com/bamsammich/wrench/internal/engine"
	"github.com/bamsammich/wrench/internal/filter"
	"github.com/bamsammich/wrench/internal/linereader"
)

// filterFlag is a custom pflag.Value that preserves CLI ordering of
// --exclude and --include rules by appending to a shared filter.Chain.
type filterFlag struct {
	chain   *filter.Chain
	include bool
}

func (*filterFlag) String() string { return "" }
func (*filterFlag) Type() string   { return "string" }

func (f *filterFlag) Set(val string) error {
	if f.include {
		return f.chain.AddInclude(val)
	}
	return f.chain.AddExclude(val)
}

// filterFlags are the selection flags shared by cp and ls.
type filterFlags struct {
	chain         *filter.Chain
	excludeHidden bool
	filterFile    string
	minSize       string
	maxSize       string
}

func (f *filterFlags) register(fs *pflag.FlagSet) {
	f.chain = filter.NewChain()
	fs.BoolVar(&f.excludeHidden, "exclude-hidden", false, "skip entries whose name starts with '.'")
	fs.Var(&filterFlag{chain: f.chain, include: false}, "exclude", "exclude entries matching PATTERN (repeatable)")
	fs.Var(&filterFlag{chain: f.chain, include: true}, "include", "include entries matching PATTERN (repeatable)")
	fs.StringVar(&f.filterFile, "filter-file", "", "read filter rules from FILE")
	fs.StringVar(&f.minSize, "min-size", "", "skip files smaller than SIZE (e.g. 1M, 100K)")
	fs.StringVar(&f.maxSize, "max-size", "", "skip files larger than SIZE (e.g. 1G, 500M)")
}

// apply completes the chain and sets it on opts. Command-line rules come
// first, then the filter file, then rules from the config file, so the
// command line wins under first-match semantics.
func (f *filterFlags) apply(cmd *cobra.Command, cfg config.Config, opts *engine.Options) error {
	if f.filterFile != "" {
		if err := f.chain.LoadFile(f.filterFile); err != nil {
			return fmt.Errorf("load filter file: %w", err)
		}
	}
	for _, p := range cfg.Filter.Exclude {
		if err := f.chain.AddExclude(p); err != nil {
			return fmt.Errorf("config exclude: %w", err)
		}
	}
	for _, p := range cfg.Filter.Include {
		if err := f.chain.AddInclude(p); err != nil {
			return fmt.Errorf("config include: %w", err)
		}
	}
	if cfg.Filter.File != nil {
		if err := f.chain.LoadFile(*cfg.Filter.File); err != nil {
			return fmt.Errorf("load config filter file: %w", err)
		}
	}

	if f.minSize != "" {
		n, err := filter.ParseSize(f.minSize)
		if err != nil {
			return fmt.Errorf("invalid --min-size: %w", err)
		}
		f.chain.SetMinSize(n)
	}
	if f.maxSize != "" {
		n, err := filter.ParseSize(f.maxSize)
		if err != nil {
			return fmt.Errorf("invalid --max-size: %w", err)
		}
		f.chain.SetMaxSize(n)
	}

	if !cmd.Flags().Changed("exclude-hidden") && cfg.Defaults.ExcludeHidden != nil {
		f.excludeHidden = *cfg.Defaults.ExcludeHidden
	}
	opts.ExcludeHiddenUnix = f.excludeHidden

	// Only set filter if it has rules/size constraints.
	if !f.chain.Empty() {
		opts.Filter = f.chain
	}
	return nil
}

func (a *app) rmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm DIR",
		Short: "Delete a tree, children before parents, never following symlinks",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			root := args[0]
			return a.runOp(a.options(), operation{
				name: "remove",
				root: root,
				blocking: func(ctx context.Context, opts engine.Options) error {
					return engine.RemoveAll(ctx, root, opts)
				},
				async: func(ctx context.Context, opts engine.Options, done func(error)) {
					engine.RemoveAllAsync(ctx, root, opts, done)
				},
			})
		},
	}
}

func (a *app) cpCmd() *cobra.Command {
	var (
		filters       filterFlags
		preserveFiles bool
		preserveTimes bool
		preserveMode  bool
		verify        bool
		bwLimitStr    string
	)

	cmd := &cobra.Command{
		Use:   "cp SRC DST",
		Short: "Copy a tree, recreating directories, symlinks and file contents",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, dst := args[0], args[1]
			d := a.cfg.Defaults

			if !cmd.Flags().Changed("verify") && d.Verify != nil {
				verify = *d.Verify
			}
			if !cmd.Flags().Changed("preserve-times") && d.PreserveTimes != nil {
				preserveTimes = *d.PreserveTimes
			}
			if !cmd.Flags().Changed("bwlimit") && d.BWLimit != nil {
				bwLimitStr = *d.BWLimit
			}

			// Parse bandwidth limit.
			var bwLimit int64
			if bwLimitStr != "" {
				var err error
				bwLimit, err = filter.ParseSize(bwLimitStr)
				if err != nil {
					return fmt.Errorf("invalid --bwlimit: %w", err)
				}
			}

			opts := a.options()
			if err := filters.apply(cmd, a.cfg, &opts); err != nil {
				return err
			}

			base := engine.CopyConfig{
				PreserveFiles:      preserveFiles,
				PreserveTimestamps: preserveTimes,
				PreserveMode:       preserveMode,
				Verify:             verify,
				BWLimit:            bwLimit,
			}
			withOpts := func(opts engine.Options) engine.CopyConfig {
				cc := base
				cc.Options = opts
				return cc
			}

			return a.runOp(opts, operation{
				name: "copy",
				root: dst,
				blocking: func(ctx context.Context, opts engine.Options) error {
					return engine.CopyTree(ctx, src, dst, withOpts(opts))
				},
				async: func(ctx context.Context, opts engine.Options, done func(error)) {
					engine.CopyTreeAsync(ctx, src, dst, withOpts(opts), done)
				},
			})
		},
	}

	f := cmd.Flags()
	filters.register(f)
	f.BoolVar(&preserveFiles, "preserve-files", false, "merge into an existing destination, keeping entries already there")
	f.BoolVar(&preserveTimes, "preserve-times", false, "carry access and modification times over")
	f.BoolVar(&preserveMode, "preserve-mode", false, "give copied files the source permission bits")
	f.BoolVar(&verify, "verify", false, "verify checksums after copy (BLAKE3)")
	f.StringVar(&bwLimitStr, "bwlimit", "", "bandwidth limit (e.g. 100M, 1G)")
	return cmd
}

func (a *app) chmodCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chmod MODE DIR",
		Short: "Set an octal mode on every file and directory in a tree, skipping symlinks",
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			mode, err := parseMode(args[0])
			if err != nil {
				return err
			}
			root := args[1]
			return a.runOp(a.options(), operation{
				name: "chmod",
				root: root,
				blocking: func(ctx context.Context, opts engine.Options) error {
					return engine.ChmodTree(ctx, root, mode, opts)
				},
				async: func(ctx context.Context, opts engine.Options, done func(error)) {
					engine.ChmodTreeAsync(ctx, root, mode, opts, done)
				},
			})
		},
	}
}

func (a *app) chownCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chown OWNER[:GROUP] DIR",
		Short: "Set owner and group on every entry in a tree without following symlinks",
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			uid, gid, err := parseOwner(args[0])
			if err != nil {
				return err
			}
			root := args[1]
			return a.runOp(a.options(), operation{
				name: "chown",
				root: root,
				blocking: func(ctx context.Context, opts engine.Options) error {
					return engine.ChownTree(ctx, root, uid, gid, opts)
				},
				async: func(ctx context.Context, opts engine.Options, done func(error)) {
					engine.ChownTreeAsync(ctx, root, uid, gid, opts, done)
				},
			})
		},
	}
}

func (a *app) lsCmd() *cobra.Command {
	var filters filterFlags

	cmd := &cobra.Command{
		Use:   "ls DIR",
		Short: "List every entry of a tree relative to its root, one directory level at a time",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := args[0]
			opts := a.options()
			if err := filters.apply(cmd, a.cfg, &opts); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			printBatch := func(batch []string) {
				for _, p := range batch {
					fmt.Fprintln(a.stdout, p)
				}
			}

			if !a.async {
				paths, err := engine.ListTree(ctx, root, opts)
				printBatch(paths)
				return a.fail("list", err)
			}

			done := make(chan error, 1)
			engine.ListTreeAsync(ctx, root, opts, func(batch []string, err error) {
				if batch != nil {
					printBatch(batch)
					return
				}
				done <- err
			})
			return a.fail("list", <-done)
		},
	}
	filters.register(cmd.Flags())
	return cmd
}

func (a *app) mkdirCmd() *cobra.Command {
	var modeStr string

	cmd := &cobra.Command{
		Use:   "mkdir DIR",
		Short: "Create a directory and any missing parents",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			mode, err := parseMode(modeStr)
			if err != nil {
				return err
			}
			return a.fail("mkdir", engine.MkdirAll(args[0], mode, a.options()))
		},
	}
	cmd.Flags().StringVarP(&modeStr, "mode", "m", "755", "octal permission bits for created directories")
	return cmd
}

func (a *app) linesCmd() *cobra.Command {
	var bufSize int

	cmd := &cobra.Command{
		Use:   "lines FILE",
		Short: "Print a file line by line through a fixed-size read window",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			lr, err := linereader.Open(args[0], bufSize)
			if err != nil {
				return a.fail("lines", err)
			}
			defer lr.Close()

			for lr.HasNextLine() {
				fmt.Fprintln(a.stdout, lr.NextLine())
			}
			return a.fail("lines", lr.Err())
		},
	}
	cmd.Flags().IntVar(&bufSize, "buffer-size", linereader.DefaultBufferSize, "read window in bytes")
	return cmd
}

func (a *app) configCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the config file path and its decoded contents",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			fmt.Fprintf(a.stdout, "# %s\n", config.Path())
			return config.Encode(a.stdout, a.cfg)
		},
	}
}
