// Command webtree exports a pkg(7) file-layout repository as a static
// directory tree servable by any ordinary HTTP file server.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"

	"github.com/pkgtools/webtree"
	"github.com/pkgtools/webtree/repo"
)

// Version is the release version (set via -ldflags).
var Version = "dev"

var (
	workers int
	verify  bool
	quiet   bool
)

var rootCmd = &cobra.Command{
	Use:   "webtree <source-repo> <dest-dir>",
	Short: "Export a package repository as a static web tree",
	Long: `webtree converts a pkg(7) file-layout repository into a self-contained
directory tree that a plain HTTP file server can publish. The tree answers
the depot protocol endpoints (versions, status, publisher, catalog,
manifest, file) as static files, so no depot server is needed.

The destination directory must not exist; a failed export removes it
again, so repeated invocations always start clean.`,
	Args:         cobra.ExactArgs(2),
	SilenceUsage: true,
	RunE:         run,
}

func init() {
	rootCmd.Flags().IntVar(&workers, "workers", 1, "packages exported concurrently per publisher")
	rootCmd.Flags().BoolVar(&verify, "verify", false, "verify payload hashes before copying blobs")
	rootCmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "suppress per-file progress output")
}

func run(cmd *cobra.Command, args []string) error {
	level := slog.LevelInfo
	if quiet {
		level = slog.LevelWarn
	}
	logger := slog.New(tint.NewHandler(os.Stderr, &tint.Options{Level: level}))

	src, err := repo.Open(args[0])
	if err != nil {
		return err
	}
	return webtree.Build(cmd.Context(), src, args[1],
		webtree.BuildWithLogger(logger),
		webtree.BuildWithServerID("webtree-"+Version),
		webtree.BuildWithWorkers(workers),
		webtree.BuildWithVerify(verify),
	)
}

func main() {
	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(Version),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		os.Exit(1)
	}
}
