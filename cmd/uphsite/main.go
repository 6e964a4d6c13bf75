package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/uphproperties/uphsite/internal/api"
	"github.com/uphproperties/uphsite/internal/auth"
	"github.com/uphproperties/uphsite/internal/catalog"
	"github.com/uphproperties/uphsite/internal/config"
	"github.com/uphproperties/uphsite/internal/db"
	"github.com/uphproperties/uphsite/internal/inquiry"
	"github.com/uphproperties/uphsite/internal/notify"
	"github.com/uphproperties/uphsite/internal/storage"
)

// levelRouter is a slog.Handler that routes records below ERROR to stdout and
// ERROR+ to stderr.
type levelRouter struct {
	min    slog.Level
	stdout slog.Handler
	stderr slog.Handler
}

func (lr *levelRouter) Enabled(_ context.Context, level slog.Level) bool {
	return level >= lr.min
}

func (lr *levelRouter) Handle(ctx context.Context, r slog.Record) error {
	if r.Level >= slog.LevelError {
		return lr.stderr.Handle(ctx, r)
	}
	return lr.stdout.Handle(ctx, r)
}

func (lr *levelRouter) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &levelRouter{
		min:    lr.min,
		stdout: lr.stdout.WithAttrs(attrs),
		stderr: lr.stderr.WithAttrs(attrs),
	}
}

func (lr *levelRouter) WithGroup(name string) slog.Handler {
	return &levelRouter{
		min:    lr.min,
		stdout: lr.stdout.WithGroup(name),
		stderr: lr.stderr.WithGroup(name),
	}
}

func parseLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// setupLogger configures structured logging. Records below ERROR go to
// stdout, ERROR goes to stderr. If logPath is non-empty, all levels are also
// written to that file. Returns a cleanup function that closes the log file
// (if opened).
func setupLogger(logPath, level, format string) (func(), error) {
	opts := &slog.HandlerOptions{Level: parseLevel(level)}

	var cleanup func()

	stdoutW := io.Writer(os.Stdout)
	stderrW := io.Writer(os.Stderr)

	if logPath != "" {
		f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("opening log file: %w", err)
		}
		cleanup = func() { f.Close() }
		stdoutW = io.MultiWriter(os.Stdout, f)
		stderrW = io.MultiWriter(os.Stderr, f)
	}

	newHandler := func(w io.Writer) slog.Handler {
		if format == "json" {
			return slog.NewJSONHandler(w, opts)
		}
		return slog.NewTextHandler(w, opts)
	}

	handler := &levelRouter{
		min:    opts.Level.Level(),
		stdout: newHandler(stdoutW),
		stderr: newHandler(stderrW),
	}
	slog.SetDefault(slog.New(handler))
	return cleanup, nil
}

func main() {
	fs := flag.NewFlagSet("uphsite", flag.ContinueOnError)

	var dbPath string
	fs.StringVar(&dbPath, "db", "", "")
	fs.StringVar(&dbPath, "d", "", "")

	var addr string
	fs.StringVar(&addr, "addr", "", "")
	fs.StringVar(&addr, "a", "", "")

	var logPath string
	fs.StringVar(&logPath, "log", "", "")
	fs.StringVar(&logPath, "l", "", "")

	var envFile string
	fs.StringVar(&envFile, "env", "", "")
	fs.StringVar(&envFile, "e", "", "")

	fs.Usage = func() {
		fmt.Fprint(os.Stdout, `Usage: uphsite [flags]

Flags:
  -d, -db <path>          SQLite database path (default: $DATABASE_PATH or uphsite.sqlite3)
  -a, -addr <host:port>   listen address (default: $ADDR or :8080)
  -l, -log <path>         log file path (default: no file, stdout/stderr only)
  -e, -env <path>         env file to load (default: .env if present)
  -h, -help               show this help and exit
`)
	}

	if err := fs.Parse(os.Args[1:]); err != nil {
		if err == flag.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	if fs.NArg() > 0 {
		fmt.Fprintf(os.Stderr, "unexpected argument: %s\n", fs.Arg(0))
		fs.Usage()
		os.Exit(1)
	}

	cfg, err := config.Load(envFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if dbPath != "" {
		cfg.DatabasePath = dbPath
	}
	if addr != "" {
		cfg.Addr = addr
	}

	closeLog, err := setupLogger(logPath, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if closeLog != nil {
		defer closeLog()
	}

	if !cfg.AdminConfigured() {
		slog.Warn("admin login is not configured, set ADMIN_EMAIL, ADMIN_PASSWORD and ADMIN_JWT_SECRET")
	}

	database, err := db.Open(cfg.DatabasePath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer database.Close()

	// Ensure schema exists (idempotent).
	if err := db.EnsureSchema(database); err != nil {
		slog.Error("failed to ensure database schema", "error", err)
		os.Exit(1)
	}

	slog.Info("database ready", "path", cfg.DatabasePath)

	media, uploads, err := openStorage(context.Background(), cfg)
	if err != nil {
		slog.Error("failed to set up media storage", "backend", cfg.StorageBackend, "error", err)
		os.Exit(1)
	}

	var notifier notify.Notifier = notify.Log{Logger: slog.Default()}
	if cfg.MailConfigured() {
		notifier = notify.NewSendGrid(cfg.SendGridAPIKey, cfg.MailFrom)
	} else {
		slog.Warn("mail is not configured, notifications will only be logged")
	}

	router := api.NewRouter(api.Deps{
		Catalog: catalog.NewService(database, media, slog.Default()),
		Inquiry: inquiry.NewService(database, media, notifier, inquiry.Options{
			ContactTo:     cfg.ContactTo,
			MaintenanceTo: cfg.MaintenanceTo,
			Logger:        slog.Default(),
		}),
		Sessions: auth.NewAuthenticator(cfg.JWTSecret),
		Admin: auth.Credentials{
			Email:        cfg.AdminEmail,
			Password:     cfg.AdminPassword,
			PasswordHash: cfg.AdminPasswordHash,
		},
		CookieSecure:   cfg.CookieSecure,
		MaxUploadBytes: cfg.MaxUploadMB << 20,
		CORSOrigins:    cfg.CORSAllowedOrigins,
		Uploads:        uploads,
	})

	handler := api.LoggingMiddleware(router)

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       2 * time.Minute,
		WriteTimeout:      2 * time.Minute,
		IdleTimeout:       120 * time.Second,
	}

	// Graceful shutdown on SIGINT/SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-quit
		slog.Info("shutdown signal received", "signal", sig.String())

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			slog.Error("server forced to shutdown", "error", err)
		}
	}()

	slog.Info("server started", "addr", cfg.Addr, "storage", cfg.StorageBackend)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped, closing database")
}

// openStorage builds the configured media backend. The returned handler
// serves stored files and is nil when the backend serves them itself.
func openStorage(ctx context.Context, cfg *config.Config) (storage.Storage, http.Handler, error) {
	switch cfg.StorageBackend {
	case config.StorageS3:
		s3, err := storage.NewS3(ctx, cfg.S3Bucket, cfg.AWSRegion, cfg.S3Endpoint)
		if err != nil {
			return nil, nil, err
		}
		return s3, nil, nil
	default:
		disk, err := storage.NewDisk(cfg.UploadDir, cfg.PublicBaseURL+"/uploads")
		if err != nil {
			return nil, nil, err
		}
		return disk, disk.Handler(), nil
	}
}
