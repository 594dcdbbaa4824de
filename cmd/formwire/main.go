package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/formwire/di"
	"github.com/formwire/di/internal/config"
	"github.com/formwire/di/internal/forms"
)

func main() {
	cfg := config.Load()

	logger, err := newLogger(cfg)
	if err != nil {
		panic(err)
	}
	defer logger.Sync() //nolint:errcheck

	if err := run(cfg, logger); err != nil {
		logger.Fatal("formwire stopped", zap.Error(err))
	}
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	zapConfig := zap.NewDevelopmentConfig()
	if cfg.IsProduction() {
		zapConfig = zap.NewProductionConfig()
	}
	zapConfig.Level = zap.NewAtomicLevelAt(level)

	return zapConfig.Build()
}

func run(cfg *config.Config, logger *zap.Logger) error {
	reg := prometheus.NewRegistry()

	app, err := bootstrap(cfg, logger, reg)
	if err != nil {
		return err
	}
	defer func() {
		if err := app.Dispose(); err != nil {
			logger.Error("could not dispose the app container", zap.Error(err))
		}
	}()

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newRouter(app, reg, cfg.Metrics),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", cfg.Addr))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}

// bootstrap creates the root container and registers every manager in it.
func bootstrap(cfg *config.Config, logger *zap.Logger, reg prometheus.Registerer) (di.Container, error) {
	metrics, err := di.NewMetrics(reg)
	if err != nil {
		return di.Container{}, err
	}

	app := di.New(di.WithName("app"), di.WithLogger(logger), di.WithMetrics(metrics))

	settings := forms.Settings{
		Required: cfg.Forms.Required,
	}

	if err := forms.Register(app, settings); err != nil {
		return di.Container{}, errors.Join(err, app.Dispose())
	}

	if err := app.Validate(); err != nil {
		return di.Container{}, errors.Join(err, app.Dispose())
	}

	return app, nil
}

func newRouter(app di.Container, gatherer prometheus.Gatherer, withMetrics bool) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	if withMetrics {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	r.Group(func(r chi.Router) {
		r.Use(di.Middleware(app))
		r.Post("/forms/{form}/validate", validateForm)
	})

	return r
}

type validateResponse struct {
	Form    string             `json:"form"`
	Valid   bool               `json:"valid"`
	Errors  []forms.FieldError `json:"errors"`
	Touched []string           `json:"touched"`
}

func validateForm(w http.ResponseWriter, r *http.Request) {
	ctn, ok := di.FromRequest(r)
	if !ok {
		http.Error(w, "no container in request", http.StatusInternalServerError)
		return
	}

	form := chi.URLParam(r, "form")

	var values map[string]string
	if err := json.NewDecoder(r.Body).Decode(&values); err != nil {
		http.Error(w, "invalid body: "+err.Error(), http.StatusBadRequest)
		return
	}

	tracker, err := di.Resolve(ctn, forms.TrackerID, form)
	if err != nil {
		writeError(w, ctn, err)
		return
	}

	handler, err := di.Resolve(ctn, forms.ValuesID, form)
	if err != nil {
		writeError(w, ctn, err)
		return
	}

	for field, value := range values {
		tracker.Touch(field)
		if err := handler.Set(field, value); err != nil {
			writeError(w, ctn, err)
			return
		}
	}

	fieldErrors, err := handler.Validate()
	if err != nil {
		writeError(w, ctn, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(validateResponse{
		Form:    form,
		Valid:   len(fieldErrors) == 0,
		Errors:  fieldErrors,
		Touched: tracker.Touched(),
	})
}

func writeError(w http.ResponseWriter, ctn di.Container, err error) {
	ctn.Logger().Error("request failed", zap.Error(err))
	http.Error(w, err.Error(), http.StatusInternalServerError)
}
