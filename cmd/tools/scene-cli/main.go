package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/annel0/marble/internal/config"
	"github.com/annel0/marble/internal/save"
)

const timeFormat = "2006-01-02T15:04:05Z"

func main() {
	var (
		configPath = flag.String("config", "", "YAML config; overrides -backend and -path")
		backend    = flag.String("backend", config.StorageFile, "Store backend: file, badger, redis, maria, mongo")
		path       = flag.String("path", "data", "Data directory for file and badger stores")
		command    = flag.String("cmd", "list", "Command: list, stats, dump")
		name       = flag.String("scene", "objects", "Scene name for stats and dump")
		timeout    = flag.Duration("timeout", 10*time.Second, "Operation timeout")
	)
	flag.Parse()

	storage := config.StorageConfig{Backend: *backend, Path: *path}
	if *configPath != "" {
		cfg, err := config.Load(*configPath)
		if err != nil {
			log.Fatalf("❌ Failed to load config: %v", err)
		}
		storage = cfg.Storage
	}

	store, err := save.Open(storage)
	if err != nil {
		log.Fatalf("❌ Failed to open %s store: %v", storage.GetBackend(), err)
	}
	defer store.Close()

	codec, err := save.NewCodec()
	if err != nil {
		log.Fatalf("❌ Failed to create codec: %v", err)
	}
	defer codec.Close()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	cli := &sceneCLI{store: store, codec: codec, out: os.Stdout}
	switch *command {
	case "list":
		err = cli.list(ctx)
	case "stats":
		err = cli.stats(ctx, *name)
	case "dump":
		err = cli.dump(ctx, *name)
	default:
		err = fmt.Errorf("unknown command %q", *command)
	}
	if err != nil {
		log.Fatalf("❌ %s failed: %v", *command, err)
	}
}

type sceneCLI struct {
	store save.Store
	codec *save.Codec
	out   io.Writer
}

func (c *sceneCLI) read(ctx context.Context, name string) (*save.Snapshot, int, error) {
	data, err := c.store.Load(ctx, name)
	if err != nil {
		return nil, 0, err
	}
	snap, err := c.codec.Decode(data)
	if err != nil {
		return nil, 0, err
	}
	return snap, len(data), nil
}

func (c *sceneCLI) list(ctx context.Context) error {
	names, err := c.store.List(ctx)
	if err != nil {
		return err
	}
	if len(names) == 0 {
		fmt.Fprintln(c.out, "📭 No saved scenes")
		return nil
	}

	w := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tRECORDS\tBYTES\tSAVED AT")
	for _, name := range names {
		snap, size, err := c.read(ctx, name)
		if err != nil {
			fmt.Fprintf(w, "%s\t-\t-\t%v\n", name, err)
			continue
		}
		fmt.Fprintf(w, "%s\t%d\t%d\t%s\n", name, len(snap.Records), size, snap.SavedAt.UTC().Format(timeFormat))
	}
	return w.Flush()
}

func (c *sceneCLI) stats(ctx context.Context, name string) error {
	snap, size, err := c.read(ctx, name)
	if err != nil {
		return err
	}

	fmt.Fprintf(c.out, "📊 Scene %s (format v%d, %d bytes, saved %s)\n",
		name, snap.Version, size, snap.SavedAt.UTC().Format(timeFormat))

	counts := snap.CountByTag()
	tags := make([]string, 0, len(counts))
	for tag := range counts {
		tags = append(tags, tag)
	}
	sort.Strings(tags)

	w := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TAG\tCOUNT")
	for _, tag := range tags {
		fmt.Fprintf(w, "%s\t%d\n", tag, counts[tag])
	}
	fmt.Fprintf(w, "total\t%d\n", len(snap.Records))
	return w.Flush()
}

func (c *sceneCLI) dump(ctx context.Context, name string) error {
	snap, _, err := c.read(ctx, name)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(c.out)
	enc.SetIndent("", "  ")
	return enc.Encode(snap)
}
