package main

import (
	"fmt"
	"math"
	"os"

	"github.com/google/shlex"
	"github.com/spf13/cobra"

	docrun "github.com/docrun/docrun"
	"github.com/docrun/docrun/internal/config"
	"github.com/docrun/docrun/internal/discover"
	"github.com/docrun/docrun/internal/document"
	"github.com/docrun/docrun/internal/engine"
	"github.com/docrun/docrun/internal/invoke"
	"github.com/docrun/docrun/internal/languages"
	"github.com/docrun/docrun/internal/stage"
	"github.com/docrun/docrun/internal/term"
)

var flags struct {
	command   string
	langNames []string

	tempExtension string
	tempPrefix    string
	tempTemplate  string

	padFile   bool
	padGroups bool

	skipMarkers  []string
	groupMarkers []string

	usePTY string

	rstExtensions      []string
	mystExtensions     []string
	markdownExtensions []string
	mdxExtensions      []string
	djotExtensions     []string
	norgExtensions     []string

	maxDepth         int
	exclude          []string
	respectGitignore bool

	failOnParseError bool
	failOnGroupWrite bool
	continueOnError  bool
	sphinxJinja2     bool
	writeBack        bool

	jobs       int
	regionJobs int

	verbose bool
}

// exitCode carries the aggregated run outcome out of the command.
var exitCode int

var rootCmd = &cobra.Command{
	Use:   "docrun [flags] [PATH ...]",
	Short: "Run commands against code blocks in documentation",
	Long: `docrun extracts code blocks from documentation files and runs a
command against each one. The block is written to a temporary file whose
line numbers match the source document, so the command's diagnostics
point at real document lines. Changes the command makes to the file are
written back into the document.`,
	Args:          cobra.ArbitraryArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runRoot,
}

func init() {
	f := rootCmd.Flags()

	f.StringVarP(&flags.command, "command", "c", "", "command to run against each code block (required)")
	f.StringSliceVarP(&flags.langNames, "language", "l", nil, "code block language to run the command against (repeatable)")

	f.StringVar(&flags.tempExtension, "temporary-file-extension", "", "suffix for temporary files; inferred from the language by default")
	f.StringVar(&flags.tempPrefix, "temporary-file-name-prefix", "", "prefix for temporary file names")
	f.StringVar(&flags.tempTemplate, "temporary-file-template", "", "name template for temporary files")

	f.BoolVar(&flags.padFile, "pad-file", true, "pad the temporary file so line numbers match the document")
	f.BoolVar(&flags.padGroups, "pad-groups", true, "pad gaps between grouped code blocks")

	f.StringSliceVar(&flags.skipMarkers, "skip-marker", nil, "additional marker for skip directives (repeatable)")
	f.StringSliceVar(&flags.groupMarkers, "group-marker", nil, "additional marker for group directives (repeatable)")

	f.StringVar(&flags.usePTY, "use-pty", "detect", "run the command in a pseudo-terminal: yes, no or detect")

	f.StringSliceVar(&flags.rstExtensions, "rst-extension", []string{".rst"}, "treat files with this suffix as reStructuredText (repeatable)")
	f.StringSliceVar(&flags.mystExtensions, "myst-extension", []string{".md"}, "treat files with this suffix as MyST (repeatable)")
	f.StringSliceVar(&flags.markdownExtensions, "markdown-extension", nil, "treat files with this suffix as Markdown (repeatable)")
	f.StringSliceVar(&flags.mdxExtensions, "mdx-extension", []string{".mdx"}, "treat files with this suffix as MDX (repeatable)")
	f.StringSliceVar(&flags.djotExtensions, "djot-extension", []string{".dj"}, "treat files with this suffix as Djot (repeatable)")
	f.StringSliceVar(&flags.norgExtensions, "norg-extension", []string{".norg"}, "treat files with this suffix as Norg (repeatable)")

	f.IntVar(&flags.maxDepth, "max-depth", math.MaxInt, "maximum directory depth to search for documents")
	f.StringSliceVar(&flags.exclude, "exclude", nil, "glob pattern for file names to exclude (repeatable)")
	f.BoolVar(&flags.respectGitignore, "respect-gitignore", false, "skip files ignored by the repository .gitignore")

	f.BoolVar(&flags.failOnParseError, "fail-on-parse-error", false, "exit non-zero when a document cannot be parsed")
	f.BoolVar(&flags.failOnGroupWrite, "fail-on-group-write", true, "exit non-zero when a command modifies a grouped code block")
	f.BoolVar(&flags.continueOnError, "continue-on-error", false, "keep going after a code block fails and report the highest exit code")
	f.BoolVar(&flags.sphinxJinja2, "sphinx-jinja2", false, "also run the command against sphinx-jinja2 blocks")
	f.BoolVar(&flags.writeBack, "write-back", true, "write changes the command makes to the temporary file back into the document")

	f.IntVarP(&flags.jobs, "jobs", "j", 1, "documents to evaluate in parallel; 0 uses one per CPU")
	f.IntVar(&flags.regionJobs, "region-jobs", 1, "code blocks to evaluate in parallel per document; 0 uses one per CPU")

	f.BoolVarP(&flags.verbose, "verbose", "v", false, "print each command invocation")

	_ = rootCmd.MarkFlagRequired("command")

	rootCmd.AddCommand(mcpCmd, versionCmd)
}

func runRoot(cmd *cobra.Command, args []string) error {
	workspace, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("determining workspace: %w", err)
	}

	loaded, err := config.Load(workspace)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	cfg := loaded.Config

	argv, err := shlex.Split(flags.command)
	if err != nil || len(argv) == 0 {
		return engine.ConfigError{Reason: fmt.Sprintf("cannot parse command %q", flags.command)}
	}

	changed := cmd.Flags().Changed

	// Flags beat config, config beats built-in defaults.
	// With no languages and no --sphinx-jinja2 nothing matches and the
	// run succeeds without evaluating a single block.
	langNames := flags.langNames
	if len(langNames) == 0 {
		langNames = cfg.Languages
	}

	skipMarkers := append(cfg.SkipMarkers, flags.skipMarkers...)
	groupMarkers := append(cfg.GroupMarkers, flags.groupMarkers...)

	tempPrefix := flags.tempPrefix
	if tempPrefix == "" {
		tempPrefix = cfg.Prefix()
	}
	tempTemplate := flags.tempTemplate
	if tempTemplate == "" {
		tempTemplate = cfg.TempTemplate
	}
	if tempTemplate == "" {
		tempTemplate = stage.DefaultTemplate
	}
	tempExtension := flags.tempExtension
	if tempExtension == "" {
		tempExtension = cfg.TempExtension
	}

	padFile := flags.padFile
	if !changed("pad-file") {
		padFile = config.BoolOr(cfg.PadFile, true)
	}
	padGroups := flags.padGroups
	if !changed("pad-groups") {
		padGroups = config.BoolOr(cfg.PadGroups, true)
	}
	failOnParseError := flags.failOnParseError
	if !changed("fail-on-parse-error") {
		failOnParseError = config.BoolOr(cfg.FailOnParseError, false)
	}
	failOnGroupWrite := flags.failOnGroupWrite
	if !changed("fail-on-group-write") {
		failOnGroupWrite = config.BoolOr(cfg.FailOnGroupWrite, true)
	}
	respectGitignore := flags.respectGitignore
	if !changed("respect-gitignore") {
		respectGitignore = config.BoolOr(cfg.RespectGitignore, false)
	}
	jobs := flags.jobs
	if !changed("jobs") {
		jobs = config.IntOr(cfg.Jobs, 1)
	}
	regionJobs := flags.regionJobs
	if !changed("region-jobs") {
		regionJobs = config.IntOr(cfg.RegionJobs, 1)
	}
	exclude := append(cfg.Exclude, flags.exclude...)

	ptyMode, err := invoke.ParsePTYMode(flags.usePTY)
	if err != nil {
		return engine.ConfigError{Reason: err.Error()}
	}

	suffixes, err := document.BuildSuffixMap(map[document.Markup][]string{
		document.RST:      flags.rstExtensions,
		document.MyST:     flags.mystExtensions,
		document.Markdown: flags.markdownExtensions,
		document.MDX:      flags.mdxExtensions,
		document.Djot:     flags.djotExtensions,
		document.Norg:     flags.norgExtensions,
	})
	if err != nil {
		return err
	}
	// Only explicit file arguments need a known suffix; directories
	// are searched and unknown files in them are simply skipped.
	var fileArgs []string
	for _, a := range args {
		if info, statErr := os.Stat(a); statErr == nil && !info.IsDir() {
			fileArgs = append(fileArgs, a)
		}
	}
	if err := suffixes.Validate(fileArgs); err != nil {
		return err
	}

	docs, err := discover.Documents(args, suffixes.Suffixes(), discover.Options{
		MaxDepth:         flags.maxDepth,
		ExcludePatterns:  exclude,
		RespectGitignore: respectGitignore,
	})
	if err != nil {
		return err
	}

	eng := &engine.Engine{
		Opts: engine.Options{
			Command:          argv,
			Languages:        langNames,
			SkipMarkers:      skipMarkers,
			GroupMarkers:     groupMarkers,
			TempPrefix:       tempPrefix,
			TempTemplate:     tempTemplate,
			TempSuffix:       tempExtension,
			PadFile:          padFile,
			PadGroups:        padGroups,
			UsePTY:           ptyMode.UsePTY(),
			WriteBack:        flags.writeBack,
			Templates:        flags.sphinxJinja2,
			FailOnParseError: failOnParseError,
			FailOnGroupWrite: failOnGroupWrite,
			ContinueOnError:  flags.continueOnError,
			DocumentJobs:     jobs,
			RegionJobs:       regionJobs,
			Verbose:          flags.verbose,
		},
		Suffixes: suffixes,
		Langs:    languages.NewTable(),
		Log:      term.Stderr(),
		Stdout:   os.Stdout,
		Stderr:   os.Stderr,
	}

	rr, err := eng.Run(cmd.Context(), docs)
	if err != nil {
		return err
	}
	exitCode = rr.ExitCode
	return nil
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(docrun.Version)
	},
}
