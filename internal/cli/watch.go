package cli

import (
	"context"
	"crypto/md5"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/aretw0/flowstep/internal/presentation/tui"
	"github.com/aretw0/flowstep/pkg/runner"
	"github.com/fsnotify/fsnotify"
)

// reloadDelay lets editors finish writing before the file is read again.
const reloadDelay = 100 * time.Millisecond

// RunWatch runs the network file interactively and restarts the run whenever
// the file changes. Progress lives in a session, so a reload resumes where
// the run was as long as the network itself did not change.
func RunWatch(ctx context.Context, opts RunOptions) error {
	logger := createLogger(opts.Debug)
	_, out := outputs(&opts)
	tui.PrintBanner(out)

	// Scope the default session by path to prevent collisions between files.
	if opts.SessionID == "" {
		abs, _ := filepath.Abs(opts.File)
		hash := md5.Sum([]byte(abs))
		opts.SessionID = fmt.Sprintf("watch-%x", hash[:4])
	}

	p, err := OpenStore(opts.Store)
	if err != nil {
		return err
	}
	defer p.Close()

	if opts.Fresh {
		_ = p.Store.Delete(ctx, opts.SessionID)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()
	// Watch the directory: editors often replace the file instead of writing it.
	if err := watcher.Add(filepath.Dir(opts.File)); err != nil {
		return fmt.Errorf("watch %s: %w", opts.File, err)
	}

	logger.Info("Starting Watcher", "path", opts.File, "session_id", opts.SessionID)
	printSystemMessage(out, "Watching '%s' in session '%s'.", opts.File, opts.SessionID)

	sigCtx := NewSignalContext(ctx)
	defer sigCtx.Cancel()

	// Reuse the same IO handler to avoid multiple stdin pumps
	handler := newHandler(&opts)

	for {
		again, err := runWatchIteration(sigCtx, opts, p, handler, watcher, logger)
		if err != nil || !again {
			return err
		}
		logger.Info("Watcher restarting")
	}
}

// runWatchIteration runs until the user quits (false), the file changes
// (true) or a signal arrives (false).
func runWatchIteration(parent *SignalContext, opts RunOptions, p *Persistence, handler runner.IOHandler, watcher *fsnotify.Watcher, logger *slog.Logger) (bool, error) {
	_, out := outputs(&opts)

	def, err := LoadNetwork(opts.File, opts.Overrides)
	if err != nil {
		logger.Error("Network load failed", "err", err)
		printSystemMessage(out, "%v", err)
		printSystemMessage(out, "Waiting for changes...")
		return waitForChange(parent, opts.File, watcher, logger), nil
	}

	eng, loaded, err := hydrate(parent, def, p, opts, logger)
	if err != nil {
		return false, fmt.Errorf("failed to init session: %w", err)
	}
	logSessionStatus(out, logger, opts.SessionID, eng, loaded, false)

	runCtx, cancel := context.WithCancel(parent)
	defer cancel()

	r := runner.NewRunner(createRunnerOptions(logger, &opts, p, handler)...)
	done := make(chan error, 1)
	go func() { done <- r.Run(runCtx, eng) }()

	changed := make(chan struct{})
	go func() {
		if waitForChange(runCtx, opts.File, watcher, logger) && runCtx.Err() == nil {
			close(changed)
		}
	}()

	select {
	case <-parent.Done():
		cancel()
		<-done
		logCompletion(out, eng, context.Canceled, false, true)
		return false, nil
	case <-changed:
		printSystemMessage(out, "Change detected in '%s'.", opts.File)
		cancel()
		<-done
		return true, nil
	case err := <-done:
		if err != nil && !errors.Is(err, context.Canceled) {
			return false, err
		}
		logCompletion(out, eng, err, false, false)
		return false, nil
	}
}

// waitForChange blocks until the watched file is written, created or renamed.
func waitForChange(ctx context.Context, file string, watcher *fsnotify.Watcher, logger *slog.Logger) bool {
	target := filepath.Clean(file)
	for {
		select {
		case <-ctx.Done():
			return false
		case err, ok := <-watcher.Errors:
			if !ok {
				return false
			}
			logger.Warn("Watcher error", "err", err)
		case ev, ok := <-watcher.Events:
			if !ok {
				return false
			}
			if filepath.Clean(ev.Name) != target || !ev.Has(fsnotify.Write|fsnotify.Create|fsnotify.Rename) {
				continue
			}
			logger.Info("Change detected, triggering reload", "event", ev.String())
			time.Sleep(reloadDelay)
			return true
		}
	}
}
