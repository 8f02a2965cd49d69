package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/niksmo/storefront/config"
	"github.com/niksmo/storefront/internal/adapter/httpclient"
	"github.com/niksmo/storefront/internal/adapter/storage"
	"github.com/niksmo/storefront/internal/core/port"
	"github.com/niksmo/storefront/internal/core/service"
)

type services struct {
	ui            *service.UIService
	router        *service.RouterService
	auth          *service.AuthService
	cart          *service.CartService
	catalog       *service.CatalogService
	orders        *service.OrdersService
	favorites     *service.FavoritesService
	notifications *service.NotificationsService
	search        *service.SearchService
}

// App assembles the client core: the storage backend, the request
// pipeline and the store services wired on top of them.
type App struct {
	ctx      context.Context
	cfg      config.Config
	kv       port.KeyValue
	redis    *storage.Redis
	pipeline *httpclient.Pipeline
	svc      services
}

func New(ctx context.Context, cfg config.Config) *App {
	app := &App{ctx: ctx, cfg: cfg}

	app.initLogger()
	app.initStorage()
	app.initPipeline()
	app.initServices()

	return app
}

func (app *App) initLogger() {
	opts := &slog.HandlerOptions{Level: app.cfg.LogLevel}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, opts))
	slog.SetDefault(logger)
}

func (app *App) initStorage() {
	const op = "App.initStorage"

	switch app.cfg.Storage.Backend {
	case "memory":
		app.kv = storage.NewMemory()
	case "redis":
		kv, err := storage.NewRedis(
			app.ctx, app.cfg.Storage.RedisAddr, app.cfg.Storage.RedisPrefix,
		)
		if err != nil {
			app.fallDown(op, err)
		}
		app.kv = kv
		app.redis = kv
	case "file", "":
		kv, err := storage.NewFile(app.cfg.Storage.Dir)
		if err != nil {
			app.fallDown(op, err)
		}
		app.kv = kv
	default:
		app.fallDown(op, fmt.Errorf(
			"unknown storage backend %q", app.cfg.Storage.Backend,
		))
	}
}

// initPipeline builds the gateway. The token source and the 401 hook
// close over the auth service, which is wired right after; the pipeline
// is never used before initServices completes.
func (app *App) initPipeline() {
	app.svc.ui = service.NewUI(app.kv)
	app.svc.router = service.NewRouter()

	app.pipeline = httpclient.New(
		app.cfg.APIBaseURL,
		httpclient.WithTimeout(app.cfg.Pipeline.Timeout),
		httpclient.WithRetryAttempts(app.cfg.Pipeline.RetryAttempts),
		httpclient.WithSlowThreshold(app.cfg.Pipeline.SlowThreshold),
		httpclient.WithNotifier(app.svc.ui),
		httpclient.WithLoadingSink(app.svc.ui),
		httpclient.WithNavigator(app.svc.router),
		httpclient.WithTokenSource(func() string {
			if app.svc.auth == nil {
				return ""
			}
			return app.svc.auth.Token()
		}),
		httpclient.WithUnauthorizedHook(func() {
			if app.svc.auth != nil {
				app.svc.auth.Teardown()
			}
		}),
	)
}

func (app *App) initServices() {
	gw := app.pipeline

	uploader := httpclient.NewUploader(
		app.cfg.APIBaseURL,
		func() string { return app.svc.auth.Token() },
		httpclient.WithUploadTimeout(app.cfg.Pipeline.UploadTimeout),
	)
	app.svc.auth = service.NewAuth(gw, app.kv, service.WithAvatarUploader(uploader))
	app.svc.cart = service.NewCart(gw, app.kv, service.DefaultShippingRule())
	app.svc.catalog = service.NewCatalog(gw)
	app.svc.favorites = service.NewFavorites(app.svc.auth, app.kv)
	app.svc.notifications = service.NewNotifications(gw)
	app.svc.search = service.NewSearch(gw, app.kv, app.svc.catalog)

	downloader := httpclient.NewDownloader(
		app.cfg.APIBaseURL,
		app.svc.auth.Token,
		httpclient.WithDownloadTimeout(app.cfg.Pipeline.DownloadTimeout),
	)
	app.svc.orders = service.NewOrders(gw, downloader)
}

// Run hydrates the persisted client state. Nothing long-running lives
// here; the app then waits for the caller's signal context.
func (app *App) Run(context.CancelFunc) {
	const op = "App.Run"
	log := slog.With("op", op)

	if app.svc.auth.Restore() {
		log.Info("session restored", "userID", app.svc.auth.UserID())
	}
	if err := app.svc.cart.Load(); err != nil {
		log.Warn("failed to load persisted cart", "err", err)
	}
	if err := app.svc.favorites.Load(); err != nil {
		log.Warn("failed to load persisted favorites", "err", err)
	}
	if err := app.svc.search.LoadRecent(); err != nil {
		log.Warn("failed to load recent searches", "err", err)
	}

	slog.Info("application is running")
}

func (app *App) Close(context.Context) {
	slog.Info("application is closing...")

	if app.redis != nil {
		app.redis.Close()
	}

	slog.Info("application is closed")
}

// Service accessors for the presentation layer.

func (app *App) Auth() *service.AuthService                   { return app.svc.auth }
func (app *App) Cart() *service.CartService                   { return app.svc.cart }
func (app *App) Catalog() *service.CatalogService             { return app.svc.catalog }
func (app *App) Orders() *service.OrdersService               { return app.svc.orders }
func (app *App) Favorites() *service.FavoritesService         { return app.svc.favorites }
func (app *App) Notifications() *service.NotificationsService { return app.svc.notifications }
func (app *App) Search() *service.SearchService               { return app.svc.search }
func (app *App) UI() *service.UIService                       { return app.svc.ui }
func (app *App) Router() *service.RouterService               { return app.svc.router }

func (app *App) fallDown(op string, err error) {
	panic(fmt.Errorf("%s: %w", op, err))
}
