package main

import (
	"context"
	"errors"
	"fmt"
	"html"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"slices"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"github.com/bookpress/bookpress"
	"github.com/bookpress/bookpress/internal/config"
	"github.com/bookpress/bookpress/internal/hints"
	"github.com/bookpress/bookpress/internal/manuscript"
)

// serveReloadScript reloads open preview tabs when a unit changes.
const serveReloadScript = `<script>new EventSource("/events").onmessage = function () { location.reload(); };</script>`

// reloadDebounce coalesces editor write bursts into one reload event.
const reloadDebounce = 150 * time.Millisecond

// shutdownGrace bounds the HTTP server drain on Ctrl+C.
const shutdownGrace = 3 * time.Second

// runServeCmd executes the serve command and returns an exit code. The
// server renders every unit listed in the config and pushes a reload event
// to open tabs whenever a watched source directory changes.
func runServeCmd(ctx context.Context, args []string, env *Environment) int {
	flags, positional, err := parseServeFlags(args)
	if err != nil {
		fmt.Fprintln(env.Stderr, err)
		return ExitUsage
	}
	if len(positional) > 0 {
		fmt.Fprintf(env.Stderr, "serve takes no arguments, got %d\n", len(positional))
		return ExitUsage
	}
	if flags.style != "" && !slices.Contains(bookpress.HighlightStyles(), flags.style) {
		fmt.Fprintf(env.Stderr, "unknown highlight style %q%s\n", flags.style, hints.ForStyle(bookpress.HighlightStyles()))
		return ExitUsage
	}

	envCfg := loadEnvConfig()
	warnUnknownEnvVars(env.Stderr)

	proj, err := loadProject(&flags.common, nil, envCfg)
	if err != nil {
		printError(env, err)
		return exitCodeFor(err)
	}

	// Serve the shared unit list regardless of variant subsets: the author
	// edits sources, not variants.
	units := proj.cfg.UnitPaths(config.Variant{})
	if len(units) == 0 {
		fmt.Fprintln(env.Stderr, "no units configured; nothing to serve")
		return ExitUsage
	}

	srv := &previewServer{
		units:   units,
		base:    proj.cfg.BaseDir,
		style:   flags.style,
		env:     env,
		clients: make(map[chan struct{}]struct{}),
	}
	if err := srv.serve(ctx, flags.addr); err != nil {
		printError(env, err)
		return exitCodeFor(err)
	}
	return ExitSuccess
}

// previewServer serves rendered chapter previews with live reload.
type previewServer struct {
	units []string // project-relative unit paths, book order
	base  string   // project root
	style string
	env   *Environment

	mu      sync.Mutex
	clients map[chan struct{}]struct{}
}

// serve runs the HTTP server and the file watcher until the context is
// cancelled.
func (s *previewServer) serve(ctx context.Context, addr string) error {
	r := chi.NewRouter()
	r.Get("/", s.handleIndex)
	r.Get("/unit/{index}", s.handleUnit)
	r.Get("/events", s.handleEvents)
	// Read-only view of the project tree, so relative image references in
	// units resolve in the browser the same way the compiler resolves them.
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.Dir(s.base))))

	httpSrv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := httpSrv.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		return s.watch(ctx)
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	})

	fmt.Fprintf(s.env.Stdout, "Serving %d units on http://%s\n", len(s.units), addr)

	err := g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// watch pushes a debounced reload event whenever a unit directory changes.
// Watch failures degrade the server to plain serving instead of killing it.
func (s *previewServer) watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("starting file watcher: %w", err)
	}
	defer watcher.Close()

	for _, dir := range s.watchDirs() {
		if err := watcher.Add(dir); err != nil {
			fmt.Fprintf(s.env.Stderr, "warning: cannot watch %s: %v\n", dir, err)
		}
	}

	var debounce *time.Timer
	defer func() {
		if debounce != nil {
			debounce.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			// Editors save via write or rename-over; anything else is noise.
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(reloadDebounce, s.broadcast)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(s.env.Stderr, "warning: watcher: %v\n", err)
		}
	}
}

// watchDirs returns the distinct parent directories of all units.
func (s *previewServer) watchDirs() []string {
	seen := make(map[string]struct{})
	var dirs []string
	for _, u := range s.units {
		dir := filepath.Dir(filepath.Join(s.base, u))
		if _, ok := seen[dir]; ok {
			continue
		}
		seen[dir] = struct{}{}
		dirs = append(dirs, dir)
	}
	sort.Strings(dirs)
	return dirs
}

// broadcast wakes every connected preview tab.
func (s *previewServer) broadcast() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for ch := range s.clients {
		select {
		case ch <- struct{}{}:
		default: // client already has a pending reload
		}
	}
}

// handleIndex lists the units in book order.
func (s *previewServer) handleIndex(w http.ResponseWriter, _ *http.Request) {
	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html><head><meta charset=\"utf-8\"><title>bookpress</title></head><body>\n")
	b.WriteString("<h1>Units</h1>\n<ol>\n")
	for i, u := range s.units {
		title := u
		if unit, err := manuscript.Load(filepath.Join(s.base, u)); err == nil {
			title = unit.Title
		}
		fmt.Fprintf(&b, "<li><a href=\"/unit/%d\">%s</a></li>\n", i, html.EscapeString(title))
	}
	b.WriteString("</ol>\n")
	b.WriteString(serveReloadScript)
	b.WriteString("\n</body></html>\n")

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(b.String()))
}

// handleUnit renders one unit as a preview page with the reload listener
// injected.
func (s *previewServer) handleUnit(w http.ResponseWriter, r *http.Request) {
	idx, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil || idx < 0 || idx >= len(s.units) {
		http.NotFound(w, r)
		return
	}
	unitPath := filepath.Join(s.base, s.units[idx])

	src, err := os.ReadFile(unitPath) // #nosec G304 -- unit paths come from the project config
	if err != nil {
		http.Error(w, fmt.Sprintf("reading %s: %v", s.units[idx], err), http.StatusNotFound)
		return
	}

	var title string
	if unit, err := manuscript.Analyze(unitPath, src); err == nil {
		title = unit.Title
	}

	page, err := bookpress.RenderPreview(src, bookpress.PreviewOptions{Title: title, Style: s.style})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	// Relative links resolve against the unit's directory under /static/.
	// The reload script and the index links use absolute paths, so the base
	// does not affect them.
	out := strings.Replace(string(page), "<head>", "<head>\n"+s.baseTag(idx), 1)
	out = strings.Replace(out, "</body>", serveReloadScript+"\n</body>", 1)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(out))
}

// baseTag builds the <base> element pointing a unit's relative references at
// the static mount of its source directory.
func (s *previewServer) baseTag(idx int) string {
	href := "/static/"
	if dir := path.Dir(filepath.ToSlash(s.units[idx])); dir != "." {
		href += dir + "/"
	}
	return fmt.Sprintf("<base href=%q>", href)
}

// handleEvents is the server-sent events endpoint preview tabs listen on.
func (s *previewServer) handleEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	ch := make(chan struct{}, 1)
	s.mu.Lock()
	s.clients[ch] = struct{}{}
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		delete(s.clients, ch)
		s.mu.Unlock()
	}()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ch:
			fmt.Fprint(w, "data: reload\n\n")
			flusher.Flush()
		}
	}
}
