package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/klauspost/compress/gzhttp"
	"golang.org/x/sync/errgroup"

	"outfit-advisor/internal/advisor"
	"outfit-advisor/internal/app"
	"outfit-advisor/internal/httputil"
	"outfit-advisor/internal/logger"
	"outfit-advisor/internal/weather"
)

const shutdownTimeout = 10 * time.Second

type adviceRequest struct {
	City  string `json:"city" validate:"max=200"`
	Units string `json:"units" validate:"max=32"`
}

func main() {
	deps, err := app.Build()
	if err != nil {
		slog.Default().Error("failed to build dependencies", "err", err)
		os.Exit(1)
	}

	addr := fmt.Sprintf(":%d", deps.Config.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           newHandler(deps),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		deps.Log.Info("advisor listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		deps.Log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		deps.Log.Error("server failed", "err", err)
		os.Exit(1)
	}
}

func newHandler(deps app.Deps) http.Handler {
	r := httputil.NewRouter(deps.Log)

	r.Get("/", pageHandler(deps))
	r.Post("/api/advice", adviceHandler(deps))
	r.Get("/healthz", httputil.HealthHandler(deps.Log))

	return gzhttp.GzipHandler(r)
}

// pageHandler re-runs the whole flow on every form submission. Bad input is
// shown in the page's error block instead of running a cycle.
func pageHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := adviceRequest{
			City:  r.URL.Query().Get("city"),
			Units: r.URL.Query().Get("units"),
		}
		log := logger.FromContext(r.Context(), deps.Log)

		status := http.StatusOK
		q, err := bind(req)
		var res advisor.Result
		if err != nil {
			problems := httputil.Problems(err)
			log.Warn("validation failed", "problems", problems)
			res = advisor.Rejected(advisor.NewQuery(req.City, weather.UnitsMetric), strings.Join(problems, "; "))
			status = http.StatusBadRequest
		} else {
			res = deps.Flow.Run(r.Context(), q)
		}

		var buf bytes.Buffer
		if err := deps.Renderer.Render(&buf, res); err != nil {
			httputil.Fail(log, w, "failed to render page", err, http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(status)
		_, _ = buf.WriteTo(w)
	}
}

func adviceHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context(), deps.Log)

		var req adviceRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httputil.Fail(log, w, "invalid payload", err, http.StatusBadRequest)
			return
		}
		q, err := bind(req)
		if err != nil {
			httputil.ValidationError(log, w, err)
			return
		}

		res := deps.Flow.Run(r.Context(), q)
		httputil.WriteJSON(w, statusFor(res), res)
	}
}

// bind validates the request and builds the cycle query. Units are matched
// loosely ("Imperial", "Metric (°C)"); an empty value means metric.
func bind(req adviceRequest) (advisor.Query, error) {
	if err := httputil.Validator.Struct(&req); err != nil {
		return advisor.Query{}, err
	}
	units, ok := weather.ParseUnits(req.Units)
	if !ok {
		return advisor.Query{}, fmt.Errorf("units must be metric or imperial, got %q", req.Units)
	}
	return advisor.NewQuery(req.City, units), nil
}

func statusFor(res advisor.Result) int {
	if res.Failure == nil {
		return http.StatusOK
	}
	switch res.Failure.Kind {
	case advisor.KindCityNotFound:
		return http.StatusNotFound
	case advisor.KindInvalidInput:
		return http.StatusBadRequest
	case advisor.KindUnexpected:
		return http.StatusInternalServerError
	default:
		return http.StatusBadGateway
	}
}
