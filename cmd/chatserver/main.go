//go:build linux

// Command chatserver serves the chat API on a single event loop.
package main

import (
	"bytes"
	"context"
	_ "embed"
	"flag"
	"io"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"event-http/application/chat"
	"event-http/application/chat/api"
	"event-http/application/http/server"
	"event-http/transport/epoll"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
)

//go:embed contacts.json
var defaultContacts []byte

type config struct {
	host      string
	port      uint
	contacts  string
	chunkSize uint
	logLevel  slog.Level
	logJSON   bool
}

func parseFlags(args []string) (config, error) {
	var cfg config

	fs := flag.NewFlagSet("chatserver", flag.ContinueOnError)
	fs.StringVar(&cfg.host, "host", "127.0.0.1", "address to listen on")
	fs.UintVar(&cfg.port, "port", 8080, "port to listen on")
	fs.StringVar(&cfg.contacts, "contacts", "", "contact lists JSON file (default: built-in lists)")
	fs.UintVar(&cfg.chunkSize, "chunk-size", server.DefaultOptions.ChunkSize, "connection buffer growth in bytes")
	fs.TextVar(&cfg.logLevel, "log-level", slog.LevelInfo, "minimum log level")
	fs.BoolVar(&cfg.logJSON, "log-json", false, "log as JSON")

	if err := fs.Parse(args); err != nil {
		return config{}, err
	}
	if cfg.port > 65535 {
		return config{}, errors.Errorf("invalid port %d", cfg.port)
	}
	return cfg, nil
}

func newLogger(w io.Writer, cfg config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.logLevel}
	if cfg.logJSON {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func loadStore(path string) (*chat.Store, error) {
	var r io.Reader = bytes.NewReader(defaultContacts)
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, errors.Wrap(err, "opening contact lists")
		}
		defer f.Close()
		r = f
	}

	lists, err := chat.LoadContactLists(r)
	if err != nil {
		return nil, err
	}

	store := chat.NewStore()
	for id, list := range lists {
		store.StoreContactList(id, list)
	}
	return store, nil
}

func run(ctx context.Context, cfg config, logger *slog.Logger) error {
	store, err := loadStore(cfg.contacts)
	if err != nil {
		return err
	}

	l, err := epoll.Listen(net.JoinHostPort(cfg.host, strconv.FormatUint(uint64(cfg.port), 10)), epoll.DefaultBacklog)
	if err != nil {
		return err
	}

	p, err := epoll.NewPoller()
	if err != nil {
		l.Close()
		return err
	}

	opts := server.DefaultOptions
	opts.ChunkSize = cfg.chunkSize

	srv := server.New(l, p, api.New(store, logger), logger, clock.New(), opts)
	defer srv.Close()

	return srv.Serve(ctx)
}

func main() {
	cfg, err := parseFlags(os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		os.Exit(0)
	}
	if err != nil {
		os.Exit(2)
	}

	logger := newLogger(os.Stderr, cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err = run(ctx, cfg, logger)
	stop()

	if err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}
}
