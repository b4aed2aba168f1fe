// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package main

import (
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/mdhender/cobold"
	"github.com/mdhender/cobold/diagnostics"
	"github.com/mdhender/cobold/lexer"
	"github.com/mdhender/cobold/pipelines/stages"
	"github.com/mdhender/cobold/source"
	store "github.com/mdhender/cobold/stores/sqlite"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

func main() {
	addFlags := func(cmd *cobra.Command) error {
		cmd.PersistentFlags().Bool("debug", false, "log debugging information")
		cmd.PersistentFlags().Bool("log-with-default-flags", false, "log with default flags")
		cmd.PersistentFlags().Bool("log-with-shortfile", false, "log with short file name")
		cmd.PersistentFlags().Bool("log-with-timestamp", false, "log with timestamp")
		cmd.PersistentFlags().Bool("quiet", false, "log less information")
		cmd.PersistentFlags().Bool("show-version", false, "show version")
		cmd.PersistentFlags().Bool("verbose", false, "log more information")
		return nil
	}
	var cmdRoot = &cobra.Command{
		Use:   "cobold",
		Short: "C preprocessor front end",
		Long:  `Splice lines, tokenize, and expand object-like macros in C source files`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logWithDefaultFlags, _ := cmd.Flags().GetBool("log-with-default-flags")
			logWithShortFileName, _ := cmd.Flags().GetBool("log-with-shortfile")
			logWithTimestamp, _ := cmd.Flags().GetBool("log-with-timestamp")
			logFlags := 0
			if logWithShortFileName {
				logFlags |= log.Lshortfile
			}
			if logWithTimestamp {
				logFlags |= log.Ltime
			}
			if logWithDefaultFlags {
				logFlags = log.LstdFlags
			}
			log.SetFlags(logFlags)

			if showVersion, _ := cmd.Flags().GetBool("show-version"); showVersion {
				fmt.Printf("cobold: version %q\n", cobold.Version().Core())
			}

			return nil
		},
	}
	cmdRoot.AddCommand(cmdTokens())
	cmdRoot.AddCommand(cmdPreprocess())
	cmdRoot.AddCommand(cmdBatch())
	cmdRoot.AddCommand(cmdInitDB())
	cmdRoot.AddCommand(cmdVersion())
	if err := addFlags(cmdRoot); err != nil {
		log.Fatal(err)
	}

	if err := cmdRoot.Execute(); err != nil {
		os.Exit(1)
	}
}

// newLogger returns a logger for the --debug and --verbose flags,
// or nil when neither is set.
func newLogger(cmd *cobra.Command) *slog.Logger {
	quiet, _ := cmd.Flags().GetBool("quiet")
	verbose, _ := cmd.Flags().GetBool("verbose")
	debug, _ := cmd.Flags().GetBool("debug")
	level := slog.LevelInfo
	switch {
	case quiet:
		return nil
	case debug:
		level = slog.LevelDebug
	case !verbose:
		return nil
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// readSource reads a file for the tokens and preprocess commands.
func readSource(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &diagnostics.ErrReadFile{Path: path, Err: err}
	}
	return data, nil
}

// report prints a diagnostic for err against src and returns err.
func report(err error, path string, src []byte, colorize bool) error {
	var rf *diagnostics.ErrReadFile
	if errors.As(err, &rf) || src == nil {
		return err
	}
	diagnostics.Print(os.Stderr, err, path, src, colorize)
	return err
}

func cmdTokens() *cobra.Command {
	showWhitespace := false
	colorize := false
	addFlags := func(cmd *cobra.Command) error {
		cmd.Flags().BoolVar(&showWhitespace, "whitespace", showWhitespace, "show white-space and every new-line")
		cmd.Flags().BoolVar(&colorize, "color", colorize, "colorize diagnostics")
		return nil
	}
	var cmd = &cobra.Command{
		Use:          "tokens <file>",
		Short:        "dump the preprocessing tokens of a source file",
		SilenceUsage: true,
		Args:         cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			src, err := readSource(path)
			if err != nil {
				return err
			}
			buf, err := source.Normalize(src)
			if err != nil {
				return report(err, path, src, colorize)
			}
			toks, err := lexer.Tokens(cmd.Context(), path, buf, newLogger(cmd))
			if err != nil {
				return report(err, path, src, colorize)
			}
			return lexer.Dump(os.Stdout, toks, buf.Original, showWhitespace)
		},
	}
	if err := addFlags(cmd); err != nil {
		log.Fatal(err)
	}
	return cmd
}

func cmdPreprocess() *cobra.Command {
	var defines, undefines []string
	dumpMacros := false
	keepGoing := false
	maxErrors := 1
	colorize := false
	addFlags := func(cmd *cobra.Command) error {
		cmd.Flags().StringArrayVarP(&defines, "define", "D", defines, "predefine NAME[=BODY]")
		cmd.Flags().StringArrayVarP(&undefines, "undefine", "U", undefines, "undefine NAME")
		cmd.Flags().BoolVar(&dumpMacros, "dump-macros", dumpMacros, "dump the macro table after preprocessing")
		cmd.Flags().BoolVarP(&keepGoing, "keep-going", "k", keepGoing, "report every directive error")
		cmd.Flags().IntVar(&maxErrors, "max-errors", maxErrors, "stop after this many directive errors (0 for no limit)")
		cmd.Flags().BoolVar(&colorize, "color", colorize, "colorize diagnostics")
		return nil
	}
	var cmd = &cobra.Command{
		Use:          "preprocess <file>",
		Short:        "preprocess a source file and print the result",
		SilenceUsage: true,
		Args:         cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			if keepGoing {
				maxErrors = 0
			}
			options := []cobold.Option{
				cobold.WithLogger(newLogger(cmd)),
				cobold.WithMaxErrors(maxErrors),
			}
			options = append(options, macroOptions(defines, undefines)...)

			src, err := readSource(path)
			if err != nil {
				return err
			}
			started := time.Now()
			unit, err := cobold.Translate(cmd.Context(), path, src, options...)
			if unit != nil {
				os.Stdout.Write(lexer.Concat(unit.Output))
				if dumpMacros {
					unit.Macros.Dump(os.Stderr)
				}
			}
			if err != nil {
				return report(err, path, src, colorize)
			}
			if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
				log.Printf("%s: preprocessed in %v\n", path, time.Since(started))
			}
			return nil
		},
	}
	if err := addFlags(cmd); err != nil {
		log.Fatal(err)
	}
	return cmd
}

// macroOptions converts -D and -U flags. A -D without a body defines the name as 1.
func macroOptions(defines, undefines []string) []cobold.Option {
	var options []cobold.Option
	for _, d := range defines {
		name, body, _ := strings.Cut(d, "=")
		options = append(options, cobold.WithDefine(name, body))
	}
	for _, u := range undefines {
		options = append(options, cobold.WithUndefine(u))
	}
	return options
}

func cmdBatch() *cobra.Command {
	var defines, undefines []string
	dbPath := "cobold.db"
	workers := 4
	keepGoing := false
	addFlags := func(cmd *cobra.Command) error {
		cmd.Flags().StringVar(&dbPath, "db", dbPath, "path to the database (created with init-db)")
		cmd.Flags().IntVarP(&workers, "workers", "w", workers, "number of files to preprocess at once")
		cmd.Flags().StringArrayVarP(&defines, "define", "D", defines, "predefine NAME[=BODY]")
		cmd.Flags().StringArrayVarP(&undefines, "undefine", "U", undefines, "undefine NAME")
		cmd.Flags().BoolVarP(&keepGoing, "keep-going", "k", keepGoing, "record every directive error")
		return nil
	}
	var cmd = &cobra.Command{
		Use:          "batch <file-or-directory>...",
		Short:        "preprocess many files and store the results",
		SilenceUsage: true,
		Args:         cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			st, err := store.NewStoreWithConfig(store.StoreConfig{Path: dbPath})
			if err != nil {
				return err
			}
			defer st.Close()

			logger := newLogger(cmd)
			options := []cobold.Option{cobold.WithLogger(logger)}
			if keepGoing {
				options = append(options, cobold.WithMaxErrors(0))
			}
			options = append(options, macroOptions(defines, undefines)...)

			svc := stages.NewBatchService(st, workers, logger, options...)
			files, err := stages.Sources(afero.NewOsFs(), args...)
			if err != nil {
				return err
			}

			started := time.Now()
			results, err := svc.Run(ctx, files)
			var ok, failed, duplicates int
			for _, r := range results {
				switch {
				case r.Duplicate:
					duplicates++
				case r.Status == store.UnitStatusOk:
					ok++
				case r.Status == store.UnitStatusFailed:
					failed++
					if quiet, _ := cmd.Flags().GetBool("quiet"); !quiet {
						log.Printf("%s: %v\n", r.Path, r.Err)
					}
				}
			}
			log.Printf("batch: %d files: %d ok, %d failed, %d duplicates in %v\n", len(files), ok, failed, duplicates, time.Since(started))
			return err
		},
	}
	if err := addFlags(cmd); err != nil {
		log.Fatal(err)
	}
	return cmd
}

func cmdInitDB() *cobra.Command {
	dbPath := "cobold.db"
	addFlags := func(cmd *cobra.Command) error {
		cmd.Flags().StringVar(&dbPath, "db", dbPath, "path to the database to create")
		return nil
	}
	var cmd = &cobra.Command{
		Use:          "init-db",
		Short:        "create a new database for batch results",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := store.InitDatabase(dbPath); err != nil {
				return err
			}
			log.Printf("%s: created\n", dbPath)
			return nil
		},
	}
	if err := addFlags(cmd); err != nil {
		log.Fatal(err)
	}
	return cmd
}

func cmdVersion() *cobra.Command {
	showBuildInfo := false
	addFlags := func(cmd *cobra.Command) error {
		cmd.Flags().BoolVar(&showBuildInfo, "build-info", showBuildInfo, "show build information")
		return nil
	}
	var cmd = &cobra.Command{
		Use:   "version",
		Short: "display the application's version number",
		RunE: func(cmd *cobra.Command, args []string) error {
			if showBuildInfo {
				fmt.Println(cobold.Version().String())
				return nil
			}
			fmt.Println(cobold.Version().Core())
			return nil
		},
	}
	if err := addFlags(cmd); err != nil {
		log.Fatal(err)
	}
	return cmd
}
