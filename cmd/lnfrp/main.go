// Command lnfrp runs the lost and found registry service.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/term"

	"github.com/iskkyy/LNFRP/internal/api"
	"github.com/iskkyy/LNFRP/internal/auth"
	"github.com/iskkyy/LNFRP/internal/config"
	"github.com/iskkyy/LNFRP/internal/db"
	"github.com/iskkyy/LNFRP/internal/logging"
	"github.com/iskkyy/LNFRP/internal/model"
	"github.com/iskkyy/LNFRP/internal/photos"
	"github.com/iskkyy/LNFRP/internal/store"
)

const usage = `Usage: lnfrp [command] [flags]

Commands:
  serve     run the HTTP server (default)
  migrate   apply database migrations and exit
  useradd   create a login account

Configuration is read from the environment and an optional .env file.
Run "lnfrp <command> -h" for command flags.
`

func main() {
	cmd, args := "serve", os.Args[1:]
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		cmd, args = args[0], args[1:]
	}

	var err error
	switch cmd {
	case "serve":
		err = cmdServe(args)
	case "migrate":
		err = cmdMigrate(args)
	case "useradd":
		err = cmdUseradd(args)
	case "help":
		fmt.Print(usage)
		return
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n%s", cmd, usage)
		os.Exit(2)
	}

	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// setup loads configuration, builds the logger and opens a migrated pool.
func setup(ctx context.Context) (*config.Config, zerolog.Logger, *db.DB, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, zerolog.Nop(), nil, nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, zerolog.Nop(), nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}

	logger, closeLog, err := logging.New(logging.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		File:   cfg.Logging.File,
	})
	if err != nil {
		return nil, zerolog.Nop(), nil, nil, err
	}

	database, err := db.Open(cfg.Database.DBConfig())
	if err != nil {
		closeLog()
		return nil, zerolog.Nop(), nil, nil, err
	}

	applied, err := db.Migrate(ctx, database)
	if err != nil {
		database.Close()
		closeLog()
		return nil, zerolog.Nop(), nil, nil, err
	}

	logger.Info().
		Str("driver", cfg.Database.Driver).
		Int("pool_size", cfg.Database.PoolSize).
		Int("migrations_applied", applied).
		Msg("database ready")

	cleanup := func() {
		database.Close()
		closeLog()
	}
	return cfg, logger, database, cleanup, nil
}

func cmdServe(args []string) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	adminUser := fs.String("admin-user", "admin", "username of the account created on first start when auth is enabled")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, logger, database, cleanup, err := setup(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	st := store.New(database)

	jwtSecret := cfg.Auth.JWTSecret
	if cfg.Auth.Enabled {
		if jwtSecret == "" {
			if jwtSecret, err = st.GetJWTSecret(ctx); err != nil {
				return err
			}
		}

		password, err := bootstrapAdmin(ctx, st, *adminUser)
		if err != nil {
			return err
		}
		if password != "" {
			printBootstrapResult(os.Stdout, *adminUser, password)
		}
	}

	photoStore, err := newPhotoStore(ctx, cfg.Photos, database)
	if err != nil {
		return err
	}

	router := api.NewRouter(api.Deps{
		Items:       st,
		Photos:      photoStore,
		Logger:      logger,
		AuthEnabled: cfg.Auth.Enabled,
		Credentials: st,
		JWTSecret:   jwtSecret,
		TokenExpiry: cfg.Auth.TokenExpiry,
		CORSOrigins: cfg.CORS.Origins,
	})

	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().
			Str("addr", server.Addr).
			Bool("auth_enabled", cfg.Auth.Enabled).
			Str("photo_backend", cfg.Photos.Backend).
			Msg("server started")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
		logger.Info().Msg("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("server forced to shutdown")
	}

	logger.Info().Msg("server stopped, closing database")
	return nil
}

func cmdMigrate(args []string) error {
	fs := flag.NewFlagSet("migrate", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}

	_, _, _, cleanup, err := setup(context.Background())
	if err != nil {
		return err
	}
	cleanup()
	return nil
}

func cmdUseradd(args []string) error {
	fs := flag.NewFlagSet("useradd", flag.ContinueOnError)
	username := fs.String("username", "", "login name (required)")
	fromStdin := fs.Bool("password-stdin", false, "read the password from the first line of stdin")
	if err := fs.Parse(args); err != nil {
		return err
	}

	*username = strings.TrimSpace(*username)
	if *username == "" {
		fs.Usage()
		return errors.New("-username is required")
	}

	var password string
	var err error
	if *fromStdin {
		password, err = readPasswordLine(os.Stdin)
	} else {
		password, err = promptPassword()
	}
	if err != nil {
		return err
	}
	if err := model.ValidatePassword(password); err != nil {
		return err
	}

	ctx := context.Background()
	_, logger, database, cleanup, err := setup(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	user, err := createUser(ctx, store.New(database), *username, password)
	if err != nil {
		return err
	}

	logger.Info().Str("user", user.Username).Int64("id", user.ID).Msg("user created")
	return nil
}

// createUser hashes the password and stores a new account.
func createUser(ctx context.Context, st *store.Store, username, password string) (*model.User, error) {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user, err := st.CreateUser(ctx, username, hash)
	if errors.Is(err, store.ErrDuplicate) {
		return nil, fmt.Errorf("user %q already exists", username)
	}
	if err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}
	return user, nil
}

// bootstrapAdmin creates the first account when none exists and returns its
// generated password. It returns "" when accounts already exist.
func bootstrapAdmin(ctx context.Context, st *store.Store, username string) (string, error) {
	n, err := st.CountUsers(ctx)
	if err != nil {
		return "", err
	}
	if n > 0 {
		return "", nil
	}

	password, err := auth.GeneratePassword(16)
	if err != nil {
		return "", fmt.Errorf("generating password: %w", err)
	}
	if _, err := createUser(ctx, st, username, password); err != nil {
		return "", fmt.Errorf("creating admin user: %w", err)
	}
	return password, nil
}

func printBootstrapResult(w io.Writer, username, password string) {
	fmt.Fprintln(w, "Admin account created:")
	fmt.Fprintf(w, "  Username: %s\n", username)
	fmt.Fprintf(w, "  Password: %s\n", password)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Save this password, it cannot be recovered.")
}

// readPasswordLine reads the first line of r without its line ending.
func readPasswordLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("reading password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// promptPassword asks for the password twice on the terminal without echo.
func promptPassword() (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", errors.New("stdin is not a terminal, use -password-stdin")
	}

	fmt.Fprint(os.Stderr, "Password: ")
	first, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("reading password: %w", err)
	}

	fmt.Fprint(os.Stderr, "Repeat password: ")
	second, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("reading password: %w", err)
	}

	if string(first) != string(second) {
		return "", errors.New("passwords do not match")
	}
	return string(first), nil
}

// newPhotoStore returns the configured photo backend.
func newPhotoStore(ctx context.Context, cfg config.PhotoConfig, database *db.DB) (photos.Store, error) {
	if cfg.Backend != config.PhotoBackendS3 {
		return photos.NewDBStore(database), nil
	}
	return photos.NewS3Store(ctx, photos.S3Config{
		Bucket:    cfg.Bucket,
		Region:    cfg.Region,
		Endpoint:  cfg.Endpoint,
		AccessKey: cfg.AccessKey,
		SecretKey: cfg.SecretKey,
	})
}
