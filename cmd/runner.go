package main

import (
	"cmp"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/moodplay/internal/intent"
	"github.com/desertthunder/moodplay/internal/services"
	"github.com/desertthunder/moodplay/internal/shared"
	"github.com/desertthunder/moodplay/internal/tasks"
	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	music      services.MusicService
	ownsMusic  bool
	resolver   intent.Resolver
	db         *sql.DB
	ownsDB     bool
	assistant  *tasks.Assistant
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer

	mu sync.Mutex
}

// RunnerOpts contains configuration options for creating a Runner.
//
// Music, Resolver and DB are built from the config by [Runner.Init] when left nil.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Music      services.MusicService
	Resolver   intent.Resolver
	DB         *sql.DB
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		music:      opts.Music,
		resolver:   opts.Resolver,
		db:         opts.DB,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, serveCommand, askCommand, playCommand, playTrackCommand,
		recommendCommand, topTracksCommand, devicesCommand, meCommand, historyCommand,
		requestsCommand, playlistsCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// Init loads the config named by --config and builds the Spotify service from it.
//
// Dependencies passed through [RunnerOpts] are kept.
func (r *Runner) Init(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if path := cmd.String("config"); path != "" && (r.configPath == "" || cmd.IsSet("config")) {
		config, err := shared.LoadConfigOrDefault(path)
		if err != nil {
			return ctx, err
		}
		r.config = config
		r.configPath = path
	}

	level := shared.ParseLogLevel(r.config.Server.LogLevel)
	if cmd.Bool("verbose") {
		level = log.DebugLevel
	}
	shared.SetLogLevel(r.logger, level)

	if r.music == nil {
		r.music = r.newSpotify(ctx)
		r.ownsMusic = r.music != nil
	}
	return ctx, nil
}

// newSpotify returns nil when no client credentials are configured.
func (r *Runner) newSpotify(ctx context.Context) services.MusicService {
	creds := r.config.Credentials.Spotify
	if creds.ClientID == "" || creds.ClientSecret == "" {
		r.logger.Debug("spotify credentials not configured")
		return nil
	}

	svc, err := services.NewSpotifyService(creds.Map(),
		services.WithHTTPClient(r.httpClient),
		services.WithTokenCallback(r.onToken),
		services.WithLogger(shared.WithLogger(r.logger, "service", "spotify")),
	)
	if err != nil {
		r.logger.Warn("failed to create Spotify service", "error", err)
		return nil
	}

	if token := creds.Token(); token != nil {
		err := svc.Authenticate(ctx, map[string]string{
			"access_token":  creds.AccessToken,
			"refresh_token": creds.RefreshToken,
			"token_expiry":  creds.TokenExpiry,
		})
		if err != nil {
			r.logger.Warn("failed to restore saved Spotify token", "error", err)
		}
	}
	return svc
}

func (r *Runner) onToken(token *oauth2.Token) {
	if err := r.saveTokens(token); err != nil {
		r.logger.Warn("failed to persist refreshed token", "error", err)
	}
}

// saveTokens stores token in the config and writes it to the config path, if one is set.
func (r *Runner) saveTokens(token *oauth2.Token) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.config == nil {
		return errors.New("config is nil")
	}
	if err := r.config.Credentials.Spotify.Update(token); err != nil {
		return fmt.Errorf("failed to update spotify configuration: %w", err)
	}
	if r.configPath == "" {
		return nil
	}
	if err := shared.SaveConfig(r.configPath, r.config); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	r.logger.Debug("spotify token saved", "path", r.configPath)
	return nil
}

// getAssistant builds the assistant on first use.
//
// The database is opened and migrated when the runner was not given one; if that fails the
// assistant runs without persistence.
func (r *Runner) getAssistant(ctx context.Context) (*tasks.Assistant, error) {
	if r.assistant != nil {
		return r.assistant, nil
	}
	if r.music == nil {
		return nil, fmt.Errorf("%w: Spotify service not initialized (set client_id and client_secret in %s)",
			shared.ErrServiceUnavailable, cmp.Or(r.configPath, "config.toml"))
	}

	if r.db == nil {
		db, err := r.openDatabase()
		if err != nil {
			r.logger.Warn("database unavailable, history will not be saved", "error", err)
		} else {
			r.db, r.ownsDB = db, true
		}
	}

	if r.resolver == nil {
		caller, err := newToolCaller(ctx, r.config, r.httpClient)
		if err != nil {
			r.logger.Warn("language model unavailable, using keywords only", "error", err)
		}
		r.resolver = intent.New(caller, intent.Options{
			Timeout: r.config.LLM.Timeout(),
			Logger:  shared.WithLogger(r.logger, "component", "intent"),
		})
	}

	r.assistant = tasks.NewAssistant(r.music, r.resolver, tasks.NewStores(r.db), tasks.OptionsFromConfig(r.config, r.logger))
	return r.assistant, nil
}

func (r *Runner) openDatabase() (*sql.DB, error) {
	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to create database: %w", err)
	}
	shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)

	if _, err := shared.RunMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return db, nil
}

// Close flushes pending records and closes the database if the runner opened it.
func (r *Runner) Close(ctx context.Context, cmd *cli.Command) error {
	if r.assistant != nil {
		r.assistant.Close()
		r.assistant = nil
	}
	if r.ownsDB && r.db != nil {
		err := r.db.Close()
		r.db, r.ownsDB = nil, false
		return err
	}
	return nil
}

// SetLogger replaces the runner's logger, e.g. with a file logger while the TUI owns the terminal.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}

// message joins the command's positional arguments into one utterance.
func message(cmd *cli.Command) string {
	return strings.TrimSpace(strings.Join(cmd.Args().Slice(), " "))
}
