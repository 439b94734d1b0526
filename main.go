package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"slate/board"
	"slate/editor"
	"slate/export"
	"slate/importer"
	"slate/persist"
	"slate/scene"
	"slate/view"
)

func main() {
	// .env is optional; environment variables win over defaults either way.
	_ = godotenv.Load()

	var (
		docID      = flag.String("doc", "scratch", "Document id to open")
		list       = flag.Bool("list", false, "List stored documents and exit")
		readonly   = flag.Bool("readonly", false, "Open a read-only shared view (pan/zoom only)")
		ephemeral  = flag.Bool("ephemeral", false, "Autosave to ephemeral in-memory storage instead of disk")
		exportFmt  = flag.String("export", "", "Export the document and exit: json or png")
		outputFile = flag.String("o", "", "Output file for -export (default: <doc>.<ext>)")
		importFile = flag.String("import", "", "Import a board file into the document and exit")
	)
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "An interactive diagram editor for the terminal.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s -doc sketch             # Open (or create) a document\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -doc sketch -export png -o sketch.png\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -doc sketch -import board.json\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -doc sketch -readonly   # Shared view, no edits\n", os.Args[0])
	}
	flag.Parse()

	dir := envOr("SLATE_DIR", defaultDir())
	logger := buildLogger(dir)
	defer logger.Sync()

	store, err := persist.NewFileStore(dir)
	if err != nil {
		fatal("opening document store: %v", err)
	}

	if *list {
		ids, err := store.List()
		if err != nil {
			fatal("%v", err)
		}
		for _, id := range ids {
			fmt.Println(id)
		}
		return
	}

	ctx := context.Background()

	if *exportFmt != "" {
		runExport(ctx, store, *docID, *exportFmt, *outputFile)
		return
	}
	if *importFile != "" {
		runImport(ctx, store, *docID, *importFile)
		return
	}

	st, err := store.Load(ctx, *docID)
	if err != nil && err != persist.ErrNotFound {
		fatal("loading %s: %v", *docID, err)
	}

	if *readonly {
		if st == nil {
			fatal("document %s does not exist", *docID)
		}
		if err := runViewer(view.New(st)); err != nil {
			fatal("%v", err)
		}
		return
	}

	sc := scene.New(logger)
	if st != nil {
		sc.LoadState(st)
	} else {
		sc.SetName(*docID)
	}
	ed := editor.New(sc)

	// The mirror target is the same document store the -readonly shared
	// view reads, so viewers track edits at the sync cadence rather than
	// the lazy autosave one. Ephemeral sessions never touch disk.
	var mirror, saver persist.Store = store, store
	if *ephemeral {
		mem := persist.NewMemoryStore()
		mirror, saver = mem, mem
	}
	notices := make(chan string, 16)
	bridge := persist.NewBridge(*docID, mirror, saver, logger,
		persist.WithSyncDelay(envDuration("SLATE_SYNC_MS", persist.DefaultSyncDelay)),
		persist.WithAutosaveDelay(envDuration("SLATE_AUTOSAVE_MS", persist.DefaultAutosaveDelay)),
		persist.WithOnSynced(sc.MarkClean),
		persist.WithNotify(func(msg string) {
			select {
			case notices <- msg:
			default:
			}
		}),
	)
	defer bridge.Close()

	if err := runEditor(sc, ed, bridge, notices); err != nil {
		fatal("%v", err)
	}
	bridge.Flush(ctx)
}

func runExport(ctx context.Context, store *persist.FileStore, docID, format, out string) {
	st, err := store.Load(ctx, docID)
	if err != nil {
		fatal("loading %s: %v", docID, err)
	}
	exp, err := export.NewRegistry().Get(format)
	if err != nil {
		fatal("%v", err)
	}
	data, err := exp.Export(st.BoardState())
	if err != nil {
		fatal("exporting %s: %v", docID, err)
	}
	if out == "" {
		out = docID + exp.GetFileExtension()
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		fatal("writing %s: %v", out, err)
	}
	fmt.Printf("exported %s to %s (%s)\n", docID, out, exp.GetFormatName())
}

func runImport(ctx context.Context, store *persist.FileStore, docID, path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		fatal("reading %s: %v", path, err)
	}
	b, err := importer.Import(data)
	if err != nil {
		fatal("importing %s: %v", path, err)
	}
	st := &board.FullState{
		Name:     docID,
		Nodes:    b.Nodes,
		Edges:    b.Edges,
		Viewport: b.Viewport,
	}
	st.Normalize()
	if err := store.Save(ctx, docID, st); err != nil {
		fatal("saving %s: %v", docID, err)
	}
	fmt.Printf("imported %s into %s (%d nodes, %d edges)\n",
		path, docID, len(b.Nodes), len(b.Edges))
}

func defaultDir() string {
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".slate")
	}
	return ".slate"
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	ms, err := strconv.Atoi(v)
	if err != nil || ms <= 0 {
		return fallback
	}
	return time.Duration(ms) * time.Millisecond
}

// buildLogger writes structured logs to a file inside the store directory
// so log output never fights the terminal UI for the screen.
func buildLogger(dir string) *zap.Logger {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return zap.NewNop()
	}
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{filepath.Join(dir, "slate.log")}
	cfg.ErrorOutputPaths = cfg.OutputPaths
	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

func fatal(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
