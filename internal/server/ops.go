package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/Ameerovich/TRRCMS-Backend-sub000/pkg/composables"
)

// Ops is the operational listener: health and metrics only. The pipeline has
// no request-facing API; operators drive it through the CLI.
type Ops struct {
	log  *logrus.Logger
	pool *pgxpool.Pool
	srv  *http.Server
}

type OpsOptions struct {
	Logger  *logrus.Logger
	Pool    *pgxpool.Pool
	Address string
}

func NewOps(opts OpsOptions) *Ops {
	o := &Ops{log: opts.Logger, pool: opts.Pool}

	router := mux.NewRouter()
	router.Use(o.requestLogger)
	router.HandleFunc("/healthz", o.handleHealth).Methods(http.MethodGet)
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	o.srv = &http.Server{
		Addr:              opts.Address,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return o
}

// Start blocks until the listener fails or Shutdown is called. A closed
// server is a clean stop, not an error.
func (o *Ops) Start() error {
	o.log.WithField("address", o.srv.Addr).Info("ops listener started")
	err := o.srv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (o *Ops) Shutdown(ctx context.Context) error {
	return o.srv.Shutdown(ctx)
}

// requestLogger stamps a request-scoped logger into the context and records
// each request with its status and duration.
func (o *Ops) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		entry := o.log.WithFields(logrus.Fields{
			"request-id": uuid.New().String(),
			"path":       r.URL.Path,
			"method":     r.Method,
		})

		ww := &statusWriter{ResponseWriter: w}
		next.ServeHTTP(ww, r.WithContext(composables.WithLogger(r.Context(), entry)))

		entry.WithFields(logrus.Fields{
			"status":   ww.Status(),
			"duration": time.Since(start),
		}).Info("request completed")
	})
}

type statusWriter struct {
	http.ResponseWriter
	status  int
	written bool
}

func (w *statusWriter) WriteHeader(code int) {
	if !w.written {
		w.status = code
		w.written = true
		w.ResponseWriter.WriteHeader(code)
	}
}

func (w *statusWriter) Status() int {
	if w.status == 0 {
		return http.StatusOK
	}
	return w.status
}

func (o *Ops) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := o.pool.Ping(ctx); err != nil {
		composables.UseLogger(r.Context()).WithError(err).Warn("health check: database unreachable")
		http.Error(w, "database unreachable", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}
