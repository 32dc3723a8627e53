package main

import (
	"context"
	"encoding/hex"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"syscall"

	"github.com/nirs/blkhash/internal/blkhash"
	"github.com/nirs/blkhash/internal/dcontext"
	"github.com/nirs/blkhash/internal/digest"
	"github.com/nirs/blkhash/internal/imageserver"
	"github.com/nirs/blkhash/internal/source"
	"github.com/nirs/blkhash/internal/version"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var opts struct {
	digestName  string
	listDigests bool
	cache       bool
	threads     int
	queueDepth  int
	readSize    int
	blockSize   int
	debugAddr   string
	logFormat   string
	logLevel    string
	showVersion bool
}

// RootCmd is the "blksum" command (spec §6.2): it never errors out of
// cobra's own flag parsing into a non-zero path without printing a
// diagnostic first, since the CLI's own exit-code contract (spec §7) is
// decided in Execute, not by cobra.
var RootCmd = &cobra.Command{
	Use:   "blksum [path]",
	Short: "Compute a parallel block-hash checksum of a disk image",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if opts.showVersion {
			printVersion()
			return nil
		}
		if opts.listDigests {
			printDigests()
			return nil
		}

		var path string
		if len(args) == 1 {
			path = args[0]
		}
		return runRoot(path)
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	flags := RootCmd.Flags()
	flags.StringVarP(&opts.digestName, "digest", "d", digest.CanonicalAlgorithm, "digest primitive to use")
	flags.BoolVarP(&opts.listDigests, "list-digests", "l", false, "list available digest primitives and exit")
	flags.BoolVarP(&opts.cache, "cache", "c", false, "keep the OS page cache for the input")
	flags.IntVarP(&opts.threads, "threads", "t", blkhash.DefaultThreads, "number of hashing worker threads")
	flags.IntVarP(&opts.queueDepth, "queue-depth", "q", blkhash.DefaultQueueDepth, "per-worker inbound queue depth")
	flags.IntVarP(&opts.readSize, "read-size", "r", source.ReadSize, "read buffer size in bytes")
	flags.IntVarP(&opts.blockSize, "block-size", "b", blkhash.BlockSize, "block size in bytes (changes the digest value)")
	flags.StringVar(&opts.debugAddr, "debug-addr", "", "address for a loopback pprof/metrics HTTP server (spec §2.5); empty disables it")
	flags.StringVar(&opts.logFormat, "log-formatter", "text", "logging format: text, json, or logstash")
	flags.StringVar(&opts.logLevel, "log-level", "info", "logging level")
	flags.BoolVarP(&opts.showVersion, "version", "v", false, "show the version and exit")
}

// Execute runs RootCmd and returns the process exit code (spec §6.2,
// §7): 0 on success, 1 on a fatal error, 128+SIGTERM (143) when a signal
// cancelled the run. The code is 143 for SIGINT as well as for SIGTERM: the
// signal that cancelled the run is not recorded.
func Execute() int {
	if err := RootCmd.Execute(); err != nil {
		if _, ok := err.(blkhash.CancelledError); ok {
			return 128 + int(syscall.SIGTERM)
		}
		fmt.Fprintf(os.Stderr, "blksum: %v\n", err)
		return 1
	}
	return 0
}

func printVersion() {
	version.PrintVersion()
}

// printDigests lists the registered primitives (spec §6.2 --list-digests),
// each shown as go-digest's self-describing "alg:hex" form of that
// primitive's empty-input digest, so the name column always matches the
// algorithm prefix a real root digest would carry in a log line.
func printDigests() {
	for _, name := range digest.List() {
		newHash, err := digest.New(name)
		if err != nil {
			continue
		}
		fmt.Println(digest.Canonical(name, newHash().Sum(nil)))
	}
}

// runRoot opens the right source driver for path, runs the engine to
// completion, and prints the result in the "<hex-digest>  <path>\n" format
// (spec §6.2). It owns signal handling: SIGINT/SIGTERM cancel the run's
// context, which every driver checks between reads. The engine's worker
// pool does not observe the context.
func runRoot(path string) error {
	if err := configureLogging(opts.logFormat, opts.logLevel); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = dcontext.WithFields(ctx, logrus.Fields{
		"digest": opts.digestName,
		"path":   displayPath(path),
		"driver": driverName(path),
	})
	log := dcontext.GetLogger(ctx)

	startDebugServer(opts.debugAddr)

	stats := &blkhash.Stats{}
	setActiveStats(stats)
	engine, err := blkhash.New(blkhash.Config{
		Digest:     opts.digestName,
		BlockSize:  opts.blockSize,
		Threads:    opts.threads,
		QueueDepth: opts.queueDepth,
		Stats:      stats,
	})
	if err != nil {
		return err
	}

	driver, closeDriver, err := openDriver(path)
	if err != nil {
		return err
	}
	defer closeDriver()

	log.Infof("hashing %q with driver %q", displayPath(path), driverName(path))
	if err := driver.Run(ctx, engine); err != nil {
		return err
	}

	root, err := engine.Finalize()
	if err != nil {
		return err
	}
	reportStats(stats)

	log.WithField("root", digest.Canonical(opts.digestName, root)).Info("finished")

	fmt.Printf("%s  %s\n", hex.EncodeToString(root), displayPath(path))
	return nil
}

func displayPath(path string) string {
	if path == "" {
		return "-"
	}
	return path
}

func driverName(path string) string {
	switch {
	case path == "":
		return "pipe"
	case isExtentMapURL(path):
		return "extent-map"
	default:
		return "file"
	}
}

// openDriver resolves path to a concrete source.Driver (spec §6.2): no
// path selects the pipe driver on standard input; an nbd+unix:// URL
// selects the extent-map driver against an already-running server;
// anything else is opened as a regular, seekable file.
func openDriver(path string) (source.Driver, func(), error) {
	switch {
	case path == "":
		return source.NewPipeDriver(os.Stdin, opts.readSize), func() {}, nil

	case isExtentMapURL(path):
		network, address, err := parseExtentMapURL(path)
		if err != nil {
			return nil, nil, err
		}
		client, err := imageserver.Dial(network, address)
		if err != nil {
			return nil, nil, blkhash.IOFailureError{Op: "dial", Err: err}
		}
		driver := source.NewExtentDriver(client, int64(opts.readSize), opts.queueDepth)
		return driver, func() { _ = client.Close() }, nil

	default:
		driver, err := source.NewFileDriver(path, opts.readSize, opts.cache)
		if err != nil {
			return nil, nil, err
		}
		return driver, func() { _ = driver.Close() }, nil
	}
}

func isExtentMapURL(path string) bool {
	u, err := url.Parse(path)
	return err == nil && u.Scheme == "nbd+unix"
}

// parseExtentMapURL extracts the unix socket path from the "nbd+unix://
// /?socket=…" form (spec §6.2).
func parseExtentMapURL(path string) (network, address string, err error) {
	u, err := url.Parse(path)
	if err != nil {
		return "", "", fmt.Errorf("invalid image server URL %q: %w", path, err)
	}
	socket := u.Query().Get("socket")
	if socket == "" {
		return "", "", fmt.Errorf("image server URL %q is missing a socket query parameter", path)
	}
	return "unix", socket, nil
}
