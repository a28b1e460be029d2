// pageserve serves a split paginated document over HTTP: the shell page at
// the root and per-page fragments for lazy loading, the layout produced by
// splitting a converted document into one file per page.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/docview/pagekit/config"
	"github.com/docview/pagekit/viewer"
)

type options struct {
	addr       string
	dir        string
	index      string
	configPath string
	allowAll   bool
}

func main() {
	opts, err := parseFlags()
	if err != nil {
		fmt.Fprintf(os.Stderr, "pageserve: %v\n", err)
		os.Exit(2)
	}
	if err := run(opts); err != nil {
		fmt.Fprintf(os.Stderr, "pageserve: %v\n", err)
		os.Exit(1)
	}
}

func parseFlags() (options, error) {
	var opts options
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: pageserve [flags]\n")
		flag.PrintDefaults()
	}
	flag.StringVar(&opts.addr, "addr", ":8080", "Listen address")
	flag.StringVar(&opts.dir, "dir", ".", "Directory with the shell page and page fragments")
	flag.StringVar(&opts.index, "index", "index.html", "Shell page file name")
	flag.StringVar(&opts.configPath, "config", "pagekit.yml", "Viewer configuration file")
	flag.BoolVar(&opts.allowAll, "allow-all", false, "Allow all CORS origins (dev mode)")
	flag.Parse()

	info, err := os.Stat(opts.dir)
	if err != nil {
		return opts, err
	}
	if !info.IsDir() {
		return opts, fmt.Errorf("%s is not a directory", opts.dir)
	}
	return opts, nil
}

func run(opts options) error {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}

	fmt.Printf("pageserve: serving %s on %s\n", opts.dir, opts.addr)
	return http.ListenAndServe(opts.addr, buildRouter(opts, cfg))
}

func buildRouter(opts options, cfg viewer.Config) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	corsOpts := cors.Options{
		AllowedOrigins: []string{"http://localhost:*", "http://127.0.0.1:*"},
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}
	if opts.allowAll {
		corsOpts.AllowedOrigins = []string{"*"}
	}
	r.Use(cors.Handler(corsOpts))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	// The embedding client reads its viewer settings from here.
	r.Get("/config", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(cfg)
	})

	r.Get("/", func(w http.ResponseWriter, req *http.Request) {
		http.ServeFile(w, req, filepath.Join(opts.dir, opts.index))
	})

	// Page fragments, one HTML file per page.
	r.Get("/pages/{name}", func(w http.ResponseWriter, req *http.Request) {
		name := chi.URLParam(req, "name")
		if name != filepath.Base(name) || strings.HasPrefix(name, ".") {
			http.NotFound(w, req)
			return
		}
		http.ServeFile(w, req, filepath.Join(opts.dir, name))
	})

	return r
}
