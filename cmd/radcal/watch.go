package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/pion/logging"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/atomic"
)

const defaultDebounce = 2 * time.Second

var (
	watchPairs    []string
	watchDebounce time.Duration
)

var watchCmd = &cobra.Command{
	Use:   "watch FILE",
	Short: "Recalibrate a logger file every time the logger appends to it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		p := newPipeline(cfg, logs, watchPairs)
		w := newWatcher(args[0], watchDebounce, logs.NewLogger("watch"), func(path string) error {
			out, err := p.run(path)
			if err != nil {
				return err
			}
			printOutcomes(cmd.OutOrStdout(), out)
			return failures(out)
		})
		return w.Run(ctx)
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
	addCalibrationFlags(watchCmd, &watchPairs)
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", defaultDebounce, "quiet period after the last write before recalibrating")
}

// watcher reruns a job on a file after writes to it settle. At most one
// run is in flight; writes during a run schedule exactly one more.
type watcher struct {
	path     string
	debounce time.Duration
	log      logging.LeveledLogger
	job      func(path string) error

	closed  *atomic.Bool
	running *atomic.Bool
	pending *atomic.Bool
	runs    *atomic.Int64
	fails   *atomic.Int64

	mu    sync.Mutex
	timer *time.Timer
	wg    sync.WaitGroup
}

func newWatcher(path string, debounce time.Duration, log logging.LeveledLogger, job func(string) error) *watcher {
	return &watcher{
		path:     filepath.Clean(path),
		debounce: debounce,
		log:      log,
		job:      job,
		closed:   atomic.NewBool(false),
		running:  atomic.NewBool(false),
		pending:  atomic.NewBool(false),
		runs:     atomic.NewInt64(0),
		fails:    atomic.NewInt64(0),
	}
}

// Run calibrates once, then watches the file's directory until ctx is done.
// The directory is watched rather than the file so replacements by rename
// are seen too.
func (w *watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "creating file watcher")
	}
	defer fw.Close()

	if err := fw.Add(filepath.Dir(w.path)); err != nil {
		return errors.Wrapf(err, "watching %s", filepath.Dir(w.path))
	}

	w.trigger()
	w.log.Infof("watching %s", w.path)

	defer func() {
		w.closed.Store(true)
		w.mu.Lock()
		if w.timer != nil {
			w.timer.Stop()
		}
		w.mu.Unlock()
		w.wg.Wait()
	}()

	for {
		select {
		case <-ctx.Done():
			w.log.Infof("stopped after %d runs (%d failed)", w.runs.Load(), w.fails.Load())
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != w.path {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				w.log.Tracef("event %s", ev)
				w.schedule()
			}
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.log.Warnf("watch error: %v", err)
		}
	}
}

// schedule (re)arms the debounce timer.
func (w *watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.trigger)
}

func (w *watcher) trigger() {
	if w.closed.Load() {
		return
	}
	if !w.running.CAS(false, true) {
		w.pending.Store(true)
		return
	}
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		for {
			n := w.runs.Inc()
			if err := w.job(w.path); err != nil {
				w.fails.Inc()
				w.log.Errorf("run %d: %v", n, err)
			} else {
				w.log.Infof("run %d done", n)
			}
			if !w.pending.CAS(true, false) {
				break
			}
		}
		w.running.Store(false)
		if w.pending.CAS(true, false) {
			w.trigger()
		}
	}()
}
