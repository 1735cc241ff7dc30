/*
Copyright © 2025 Seednode <seednode@seedno.de>
*/

package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Seednode/bilsene/feed"
	"github.com/Seednode/bilsene/storage"
	"github.com/dustin/go-humanize"
	"github.com/julienschmidt/httprouter"
)

const (
	logDate string        = `2006-01-02T15:04:05.000-07:00`
	timeout time.Duration = 10 * time.Second
)

func securityHeaders(cfg *Config, w http.ResponseWriter) {
	w.Header().Set("Cross-Origin-Embedder-Policy", "require-corp")
	w.Header().Set("Cross-Origin-Opener-Policy", "same-origin")
	w.Header().Set("Cross-Origin-Resource-Policy", "same-site")
	w.Header().Set("Permissions-Policy", "geolocation=(), midi=(), sync-xhr=(), microphone=(), camera=(), magnetometer=(), gyroscope=(self), accelerometer=(self), fullscreen=(self), payment=()")
	w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("Content-Security-Policy", "default-src 'self'")

	if cfg.scheme() == "https" {
		w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains; preload")
	}
}

func realIP(r *http.Request) string {
	host, port, _ := net.SplitHostPort(r.RemoteAddr)
	if ip := r.Header.Get("CF-Connecting-IP"); ip != "" {
		if net.ParseIP(ip) != nil {
			host = ip
		}
	} else if ip := r.Header.Get("X-Real-IP"); ip != "" {
		if net.ParseIP(ip) != nil {
			host = ip
		}
	}
	if net.ParseIP(host) != nil && strings.Contains(host, ":") {
		host = "[" + host + "]"
	}
	if port != "" {
		return host + ":" + port
	}
	return host
}

func serveVersion(cfg *Config, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		startTime := time.Now()

		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		securityHeaders(cfg, w)
		w.WriteHeader(http.StatusOK)

		written, err := w.Write([]byte("bilsene v" + releaseVersion + "\n"))
		if err != nil {
			errs <- err

			return
		}

		logf(cfg, "SERVE: Version page (%s) to %s in %s",
			humanize.Bytes(uint64(written)),
			realIP(r),
			time.Since(startTime).Round(time.Microsecond),
		)
	}
}

func serveCategories(cfg *Config, categories *storage.Categories, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		startTime := time.Now()

		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()

		cats, err := categories.Load(ctx)
		if err != nil {
			errs <- err
			http.Error(w, "unable to load categories", http.StatusInternalServerError)

			return
		}

		data, err := json.Marshal(cats)
		if err != nil {
			errs <- err
			http.Error(w, "unable to encode categories", http.StatusInternalServerError)

			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Content-Length", strconv.Itoa(len(data)))
		securityHeaders(cfg, w)

		written, err := w.Write(data)
		if err != nil {
			errs <- err

			return
		}

		logf(cfg, "SERVE: Category list (%s) to %s in %s",
			humanize.Bytes(uint64(written)),
			realIP(r),
			time.Since(startTime).Round(time.Microsecond),
		)
	}
}

// refreshFeed pulls the remote category list in the background. Failures
// are logged and the last good cache stays authoritative.
func refreshFeed(ctx context.Context, cfg *Config, categories *storage.Categories) {
	if cfg.feedURL == "" {
		return
	}

	r := &feed.Refresher{
		Client: feed.NewClient(cfg.feedURL, timeout),
		Cache:  categories,
	}

	r.Run(ctx, cfg.feedInterval, func(n int, err error) {
		if err != nil {
			logf(cfg, "FEED: Refresh from %s failed, keeping cached categories: %v", cfg.feedURL, err)
			return
		}
		logf(cfg, "FEED: Cached %d categories from %s", n, cfg.feedURL)
	})
}

// newRouter registers every route under cfg.prefix.
func newRouter(cfg *Config, categories *storage.Categories, settings *storage.SettingsStore, errs chan<- error) (*httprouter.Router, *GameManager) {
	mux := httprouter.New()

	mux.PanicHandler = func(w http.ResponseWriter, r *http.Request, i any) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		securityHeaders(cfg, w)
		w.WriteHeader(http.StatusInternalServerError)

		io.WriteString(w, newPage(cfg, "Server Error", "An error has occurred. Please try again."))
	}

	mux.GET(cfg.prefix+"/", serveHomePage(cfg))

	mux.GET(cfg.prefix+"/assets/*asset", serveAssets(cfg, errs))

	mux.GET(cfg.prefix+"/favicons/*favicon", serveFavicons(cfg, errs))

	mux.GET(cfg.prefix+"/favicon.ico", serveFavicons(cfg, errs))

	mux.GET(cfg.prefix+"/categories", serveCategories(cfg, categories, errs))

	mux.GET(cfg.prefix+"/healthz", serveHealthCheck(cfg, errs))

	mux.GET(cfg.prefix+"/robots.txt", serveRobots(cfg, errs))

	mux.GET(cfg.prefix+"/version", serveVersion(cfg, errs))

	if cfg.profile {
		registerProfileHandlers(cfg, mux)
	}

	gm := registerPlay(cfg, "/play", mux, categories, settings)

	return mux, gm
}

func ServePage(ctx context.Context, cfg *Config, args []string) error {
	var err error

	timeZone := os.Getenv("TZ")
	if timeZone != "" {
		time.Local, err = time.LoadLocation(timeZone)
		if err != nil {
			return err
		}
	}

	logf(cfg, "START: bilsene v%s", releaseVersion)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	store, err := storage.Open(cfg.dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	logf(cfg, "STORE: Opened %s", cfg.dbPath)

	categories := storage.NewCategories(store)
	settings := storage.NewSettingsStore(store, cfg.defaultSettings())

	go refreshFeed(ctx, cfg, categories)

	errs := make(chan error, 64)

	go func() {
		for err := range errs {
			errorf("%v", err)
		}
	}()

	cfg.prefix = strings.TrimSuffix(cfg.prefix, "/")

	mux, _ := newRouter(cfg, categories, settings, errs)

	srv := &http.Server{
		Addr:              net.JoinHostPort(cfg.bind, strconv.Itoa(cfg.port)),
		Handler:           mux,
		IdleTimeout:       10 * time.Minute,
		ReadTimeout:       timeout,
		ReadHeaderTimeout: timeout,
		WriteTimeout:      timeout,
	}

	go func() {
		var err error
		if cfg.tlsKey != "" && cfg.tlsCert != "" {
			logf(cfg, "SERVE: Listening on %s://%s%s/", cfg.scheme(), srv.Addr, cfg.prefix)
			err = srv.ListenAndServeTLS(cfg.tlsCert, cfg.tlsKey)
		} else {
			logf(cfg, "SERVE: Listening on %s://%s%s/", cfg.scheme(), srv.Addr, cfg.prefix)
			err = srv.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errorf("%v", err)
			cancel()
		}
	}()

	<-ctx.Done()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = srv.Shutdown(shutdownCtx)

	return nil
}
