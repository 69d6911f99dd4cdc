// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"

	"github.com/staranto/galleryctl/internal/api"
	"github.com/staranto/galleryctl/internal/attrs"
	"github.com/staranto/galleryctl/internal/auth"
	"github.com/staranto/galleryctl/internal/cache"
	"github.com/staranto/galleryctl/internal/cacheutil"
	"github.com/staranto/galleryctl/internal/config"
	"github.com/staranto/galleryctl/internal/fetcher"
	"github.com/staranto/galleryctl/internal/layout"
	"github.com/staranto/galleryctl/internal/meta"
	"github.com/staranto/galleryctl/internal/output"
	"github.com/staranto/galleryctl/internal/storage"
	"github.com/staranto/galleryctl/internal/swr"
)

// ShortCircuitTLDR checks the --tldr flag and, if present and available,
// runs `tldr galleryctl-<subcmd>` and returns true so the caller can exit early.
func ShortCircuitTLDR(ctx context.Context, cmd *cli.Command, subcmd string) bool {
	if cmd.Bool("tldr") {
		if _, err := exec.LookPath("tldr"); err == nil {
			c := exec.CommandContext(ctx, "tldr", "galleryctl-"+subcmd)
			c.Stdout = os.Stdout
			c.Stderr = os.Stderr
			_ = c.Run()
		}
		return true
	}
	return false
}

// BuildAttrs constructs an AttrList with defaults and optional extras from
// --attrs, then applies the global transform spec.
func BuildAttrs(cmd *cli.Command, defaults ...string) (al attrs.AttrList) {
	//nolint:errcheck
	{
		for _, d := range defaults {
			al.Set(d)
		}
		if extras := cmd.String("attrs"); extras != "" {
			al.Set(extras)
		}
		al.SetGlobalTransformSpec()
	}
	return
}

// Emit marshals v and passes it to the common output routine. parent is the
// gjson path of the rows within v.
func Emit(v any, al attrs.AttrList, cmd *cli.Command, parent string) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}
	return output.SliceDiceSpit(raw, al, cmd, parent, Writer(cmd))
}

// Writer is where command output goes.
func Writer(cmd *cli.Command) io.Writer {
	if cmd != nil && cmd.Root().Writer != nil {
		return cmd.Root().Writer
	}
	return os.Stdout
}

// GetMeta returns the meta.Meta stored in the command's Metadata. If missing
// or of an unexpected type, it returns the zero value.
func GetMeta(cmd *cli.Command) meta.Meta {
	if cmd == nil || cmd.Metadata == nil {
		return meta.Meta{}
	}
	if m, ok := cmd.Metadata["meta"].(meta.Meta); ok {
		return m
	}
	return meta.Meta{}
}

// Runtime is everything a command needs to talk to the API. Build it with
// NewRuntime and always Close it.
type Runtime struct {
	Store   storage.Storage
	Cache   *cache.Manager
	Fetcher *fetcher.Fetcher
	Session *auth.Session
	Client  *swr.Client
	API     *api.Service
}

// StorageOptions reads the driver settings from the command and config.
func StorageOptions(cmd *cli.Command) storage.Options {
	opts := storage.Options{Driver: cmd.String("storage")}
	if !cacheutil.Enabled() {
		opts.Driver = storage.DriverMemory
	}

	defaultDB := ""
	if dir, ok := cacheutil.Dir(); ok {
		defaultDB = filepath.Join(dir, "app-cache.db")
	}
	opts.SQLitePath, _ = config.GetString("cache.sqlite.path", defaultDB)
	opts.S3Bucket, _ = config.GetString("cache.s3.bucket", "")
	opts.S3Prefix, _ = config.GetString("cache.s3.prefix", "galleryctl/")
	opts.S3Region, _ = config.GetString("cache.s3.region", "")
	opts.S3Profile, _ = config.GetString("cache.s3.profile", "")
	opts.S3Endpoint, _ = config.GetString("cache.s3.endpoint", "")
	opts.RedisURL, _ = config.GetString("cache.redis.url", "redis://localhost:6379")
	return opts
}

// ClientOptions reads the request pipeline knobs from config.
func ClientOptions() swr.Options {
	var opts swr.Options
	opts.RefreshInterval, _ = config.GetDuration("cache.refresh", swr.DefaultRefreshInterval)
	opts.DedupInterval, _ = config.GetDuration("cache.dedupe", swr.DefaultDedupInterval)
	opts.SlowThreshold, _ = config.GetDuration("cache.slow", swr.DefaultSlowThreshold)
	opts.OversizedThreshold, _ = config.GetBytes("cache.oversized", swr.DefaultOversizedThreshold)
	return opts
}

// Bounds reads the column bounds from config.
func Bounds() layout.Bounds {
	b := layout.DefaultBounds
	b.Min, _ = config.GetInt("layout.min_columns", layout.MinColumns)
	b.Max, _ = config.GetInt("layout.max_columns", layout.MaxColumns)
	if b.Min < 1 || b.Max < b.Min {
		log.Warnf("ignoring invalid layout bounds %d..%d", b.Min, b.Max)
		return layout.DefaultBounds
	}
	return b
}

// NewRuntime opens the durable store, loads the cache and wires the fetcher,
// session, swr client and API service.
func NewRuntime(ctx context.Context, cmd *cli.Command) (*Runtime, error) {
	if hours, _ := config.GetInt("cache.clean", 0); hours > 0 {
		if err := cacheutil.Purge(hours); err != nil {
			log.WithError(err).Warn("cache clean failed")
		}
	}

	store, err := storage.New(ctx, StorageOptions(cmd))
	if err != nil {
		return nil, fmt.Errorf("failed to open cache storage: %w", err)
	}

	f, err := fetcher.New(cmd.String("api"))
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	if err := f.SetSession(cmd.String("session")); err != nil {
		_ = store.Close()
		return nil, err
	}

	m := cache.NewManager(store)
	m.Load(ctx)

	session := auth.NewSession(m, f)
	opts := ClientOptions()
	opts.OnUnauthorized = session.HandleUnauthorized
	opts.OnSlow = func(key string) {
		fmt.Fprintf(os.Stderr, "still waiting on %s\n", key)
	}

	client := swr.New(m, f, opts)
	client.Start()

	return &Runtime{
		Store:   store,
		Cache:   m,
		Fetcher: f,
		Session: session,
		Client:  client,
		API:     api.New(client),
	}, nil
}

// flushTimeout bounds the teardown flush.
const flushTimeout = 10 * time.Second

// Close stops background work, then flushes and closes the store. The flush
// runs even when ctx is already cancelled, as it is after an interrupt.
func (r *Runtime) Close(ctx context.Context) {
	r.Client.Close()

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), flushTimeout)
	defer cancel()
	r.Cache.Flush(ctx)
	if err := r.Store.Close(); err != nil {
		log.WithError(err).Debug("failed to close storage")
	}
}

// QueryCommandBuilder constructs a cli.Command for the read commands
// (user, gallery, collection) using a consistent pattern. It wires metadata,
// adds the tldr flag, applies global flags, and sets up validators.
type QueryCommandBuilder struct {
	Name      string
	Usage     string
	UsageText string
	Flags     []cli.Flag
	Action    func(context.Context, *cli.Command) error
	Meta      meta.Meta
}

// Build returns a configured cli.Command from the builder.
func (qcb *QueryCommandBuilder) Build() *cli.Command {
	return &cli.Command{
		Name:      qcb.Name,
		Usage:     qcb.Usage,
		UsageText: qcb.UsageText,
		Metadata: map[string]any{
			"meta": qcb.Meta,
		},
		Flags: append(qcb.Flags, append([]cli.Flag{
			tldrFlag,
			NewAPIFlag(qcb.Name, qcb.Meta.Config.Source),
			NewSessionFlag(qcb.Name, qcb.Meta.Config.Source),
			NewStorageFlag(qcb.Name, qcb.Meta.Config.Source),
		}, NewGlobalFlags(qcb.Name)...)...),
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			return ctx, GlobalFlagsValidator(ctx, c)
		},
		Action: qcb.Action,
	}
}

// QueryActionRunner encapsulates the common read action pattern. FetchFn
// gets a ready Runtime and returns the value to emit.
type QueryActionRunner struct {
	CommandName  string
	DefaultAttrs []string
	// Parent is the gjson path of the rows within the fetched value.
	Parent  string
	FetchFn func(context.Context, *cli.Command, *Runtime) (any, error)
}

// Run executes the query action with the provided context and command.
func (qar *QueryActionRunner) Run(ctx context.Context, cmd *cli.Command) error {
	m := GetMeta(cmd)
	log.Debugf("Executing action for %v", m.Args)

	if ShortCircuitTLDR(ctx, cmd, qar.CommandName) {
		return nil
	}

	attrs := BuildAttrs(cmd, qar.DefaultAttrs...)
	log.Debugf("attrs: %v", attrs)

	rt, err := NewRuntime(ctx, cmd)
	if err != nil {
		return err
	}
	defer rt.Close(ctx)

	result, err := qar.FetchFn(ctx, cmd, rt)
	if err != nil {
		return err
	}

	return Emit(result, attrs, cmd, qar.Parent)
}

// requireArg returns the first positional argument or a usage error.
func requireArg(cmd *cli.Command, name string) (string, error) {
	arg := cmd.Args().First()
	if arg == "" {
		return "", fmt.Errorf("missing %s\nusage: %s", name, cmd.UsageText)
	}
	return arg, nil
}
