package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/client/client"
	"github.com/dmitrijs2005/gophauth/internal/client/config"
	"github.com/dmitrijs2005/gophauth/internal/client/forms"
	"github.com/dmitrijs2005/gophauth/internal/client/navigation"
	"github.com/dmitrijs2005/gophauth/internal/client/services"
	"github.com/dmitrijs2005/gophauth/internal/client/session"
	"github.com/dmitrijs2005/gophauth/internal/client/upload"
	"github.com/dmitrijs2005/gophauth/internal/cryptox"
	"github.com/dmitrijs2005/gophauth/internal/logging"

	_ "modernc.org/sqlite"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

type App struct {
	config      *config.Config
	store       *session.Store
	router      *navigation.Router
	authService services.AuthService
	loginForm   *forms.LoginForm
	regForm     *forms.RegisterForm
	logger      logging.Logger
	reader      *bufio.Reader
	out         io.Writer
	closers     []func() error

	mu   sync.Mutex
	mode Mode
}

// NewApp opens the vault, restores the stored session and connects the
// configured transport.
func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	db, err := client.InitDatabase(ctx, c.VaultPath)
	if err != nil {
		logger.Error(ctx, "error initializing database", "path", c.VaultPath, "error", err)
		return nil, err
	}

	secret, err := cryptox.LoadOrCreateSecret(c.DeviceKeyPath)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("device key: %w", err)
	}

	store := session.NewStore(
		session.WithPersister(session.NewVault(db, secret)),
		session.WithLogger(logger),
	)
	if err := store.Load(ctx); err != nil {
		logger.Warn(ctx, "stored session ignored", "error", err)
	}

	api, err := newAPIClient(c, store)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	var opts []services.Option
	if c.UploadPictures {
		up, err := upload.NewS3Uploader(ctx, upload.Config{
			Region:        c.S3Region,
			AccessKey:     c.S3AccessKey,
			SecretKey:     c.S3SecretKey,
			BaseEndpoint:  c.S3BaseEndpoint,
			Bucket:        c.S3Bucket,
			PublicBaseURL: c.S3PublicBaseURL,
		})
		if err != nil {
			_ = api.Close()
			_ = db.Close()
			return nil, err
		}
		opts = append(opts, services.WithUploader(up))
	}

	a := newApp(ctx, c, store, api, logger, bufio.NewReader(os.Stdin), os.Stdout, opts...)
	a.closers = append(a.closers, db.Close)
	return a, nil
}

func newAPIClient(c *config.Config, store *session.Store) (client.Client, error) {
	switch c.Transport {
	case config.TransportGRPC:
		gc, err := client.NewGRPCClient(c.GRPCAddr, c.RequestTimeout)
		if err != nil {
			return nil, fmt.Errorf("grpc client: %w", err)
		}
		return gc, nil
	default:
		return client.NewHTTPClient(c.APIBaseURL, c.RequestTimeout, client.WithBearer(store.Token)), nil
	}
}

// newApp wires the router, the pages and the auth service around already
// constructed dependencies.
func newApp(ctx context.Context, c *config.Config, store *session.Store, api client.Client,
	logger logging.Logger, reader *bufio.Reader, out io.Writer, opts ...services.Option) *App {

	router := navigation.NewRouter(logger)
	opts = append([]services.Option{services.WithLogger(logger), services.WithLanding(c.LandingRoute)}, opts...)
	auth := services.NewAuthService(api, store, router, opts...)

	a := &App{
		config:      c,
		store:       store,
		router:      router,
		authService: auth,
		loginForm:   forms.NewLoginForm(auth),
		regForm:     forms.NewRegisterForm(auth),
		logger:      logger.With("module", "cli"),
		reader:      reader,
		out:         out,
	}

	guard := navigation.RedirectIfAuthenticated(store, c.LandingRoute)
	router.Handle(navigation.RouteHome, navigation.PageFunc(a.homePage))
	router.Handle(navigation.RouteLogin, navigation.PageFunc(a.loginPage), guard)
	router.Handle(navigation.RouteRegister, navigation.PageFunc(a.registerPage), guard)
	if c.LandingRoute != navigation.RouteHome {
		router.Handle(c.LandingRoute, navigation.PageFunc(a.homePage))
	}

	unwatch := router.Watch(ctx, store)
	a.closers = append(a.closers, func() error { unwatch(); return nil })
	return a
}

func (a *App) setMode(ctx context.Context, mode Mode) {
	a.mu.Lock()
	changed := a.mode != mode
	a.mode = mode
	a.mu.Unlock()

	if changed {
		a.logger.Info(ctx, "switched mode", "mode", mode)
	}
}

func (a *App) Mode() Mode {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.mode
}

// Run shows the landing page, starts the online watcher and blocks in the
// REPL until the user exits or input ends.
func (a *App) Run(ctx context.Context) {
	defer a.Close(ctx)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	a.println("Welcome to gauth (type 'help' for commands)")

	go a.StartOnlineStatusWatcher(ctx, a.config.OnlineCheckInterval)

	if err := a.router.Navigate(ctx, a.config.LandingRoute); err != nil {
		a.logger.Error(ctx, "cannot open landing page", "error", err)
	}

	runREPL(ctx, a, a.getStatus, a.reader)
}

// Close releases the transport and the vault.
func (a *App) Close(ctx context.Context) {
	var errs []error
	errs = append(errs, a.authService.Close(ctx))
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	if err := errors.Join(errs...); err != nil {
		a.logger.Warn(ctx, "close", "error", err)
	}
}

func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	check := func() {
		pctx, cancel := context.WithTimeout(ctx, 3*time.Second)
		err := a.authService.Ping(pctx)
		cancel()

		if err != nil {
			a.setMode(ctx, ModeOffline)
		} else {
			a.setMode(ctx, ModeOnline)
		}
	}

	check()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			check()
		case <-ctx.Done():
			return
		}
	}
}

func (a *App) println(args ...any) {
	fmt.Fprintln(a.out, args...)
}
