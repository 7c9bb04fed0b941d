package main

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/go-logr/logr"
	"github.com/go-logr/stdr"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/73ai/code-context/internal/depgraph"
	"github.com/73ai/code-context/internal/fsx"
	"github.com/73ai/code-context/internal/index"
	"github.com/73ai/code-context/internal/insight"
	"github.com/73ai/code-context/internal/langreg"
	"github.com/73ai/code-context/internal/model"
	"github.com/73ai/code-context/internal/parsecache"
	"github.com/73ai/code-context/internal/projindex"
	"github.com/73ai/code-context/internal/refsearch"
	"github.com/73ai/code-context/internal/synparse"
	"github.com/73ai/code-context/internal/vcs"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// globalConfig holds the flags shared by every subcommand: the workspace
// root the Project Index operates on and how chatty its logger is.
type globalConfig struct {
	Root      string
	Workers   int
	LogLevel  int
	JSON      bool
	DiskCache string
}

var global globalConfig

var rootCmd = &cobra.Command{
	Use:     "codegrep",
	Short:   "A multi-language code intelligence engine",
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	Long: `codegrep indexes a workspace's source tree with tree-sitter, then answers
symbol search, reference/call-graph, dependency, and insight queries
against the resulting index.

EXAMPLES:
    codegrep index .
    codegrep search "handleRequest" --kind function
    codegrep refs find User
    codegrep deps .
    codegrep insight ./internal/projindex`,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&global.Root, "root", ".", "workspace root to index")
	rootCmd.PersistentFlags().IntVarP(&global.Workers, "workers", "w", 0, "parallel parse fan-out during indexing (0 = runtime default)")
	rootCmd.PersistentFlags().IntVar(&global.LogLevel, "log-level", 0, "structured log verbosity (higher is chattier)")
	rootCmd.PersistentFlags().BoolVar(&global.JSON, "json", true, "emit JSON output")
	rootCmd.PersistentFlags().StringVar(&global.DiskCache, "disk-cache", "", "directory for a badger-backed on-disk Parse Cache tier (default: in-process LRU only)")

	viper.BindPFlags(rootCmd.PersistentFlags())
}

func initConfig() {
	viper.SetConfigName(".codegrep")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("$HOME")

	viper.SetEnvPrefix("CODEGREP")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// core bundles the fully wired engine components a subcommand needs. Every
// subcommand builds one from global flags, indexes the workspace once, and
// tears nothing down afterward — the process is the Project Index's whole
// lifetime, per §6's "Persisted state: none".
type core struct {
	fs       *fsx.FS
	registry *langreg.Registry
	parser   *synparse.Parser
	index    *projindex.Index
	search   *refsearch.Searcher
	deps     *depgraph.Analyzer
	insight  *insight.Synthesizer
}

func newLogger() logr.Logger {
	stdr.SetVerbosity(global.LogLevel)
	return stdr.New(log.New(os.Stderr, "", log.LstdFlags))
}

// activeStorage is the on-disk Parse Cache backend opened by the current
// invocation's buildCore call, if --disk-cache was set. main closes it after
// the command finishes running, since a cobra RunE has no return path for a
// resource that must outlive the core it's embedded in.
var activeStorage index.Storage

// closeActiveStorage releases the on-disk Parse Cache backend, if one was
// opened for this invocation. Safe to call even when --disk-cache was never
// set.
func closeActiveStorage() {
	if activeStorage != nil {
		activeStorage.Close()
		activeStorage = nil
	}
}

// buildCore wires every core component over global.Root and performs a full
// index() before returning, so callers can go straight to querying.
func buildCore(cmd *cobra.Command) (*core, model.IndexStats, error) {
	log := newLogger()
	fs := fsx.NewOS(global.Root)
	registry := langreg.New()
	parser := synparse.New(registry, log)

	var cache parsecache.Cache
	if global.DiskCache != "" {
		storage, err := index.NewBadgerStorage(index.DefaultBadgerOptions(global.DiskCache))
		if err != nil {
			return nil, model.IndexStats{}, fmt.Errorf("opening disk cache at %s: %w", global.DiskCache, err)
		}
		activeStorage = storage
		cache = parsecache.NewBadgerCache(storage)
	}

	ix := projindex.New(projindex.Config{
		FS:       fs,
		Registry: registry,
		Cache:    cache,
		Log:      log,
		Workers:  global.Workers,
	})

	stats, err := ix.IndexProject(cmd.Context(), "")
	if err != nil {
		return nil, model.IndexStats{}, fmt.Errorf("indexProject: %w", err)
	}

	search := refsearch.New(ix, fs)
	deps := depgraph.New(ix, fs, parser, registry.Extensions())

	var recent insight.RecentChanges
	if hist, err := vcs.Open(global.Root); err == nil {
		recent = hist.RecentChanges
	}
	syn := insight.New(ix, search, deps, fs, parser, registry, recent)

	return &core{
		fs:       fs,
		registry: registry,
		parser:   parser,
		index:    ix,
		search:   search,
		deps:     deps,
		insight:  syn,
	}, stats, nil
}
