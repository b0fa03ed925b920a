package cli

import (
	"context"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// NewWatchCommand creates the watch command.
func NewWatchCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Regenerate whenever the IDL document changes",
		Long: `Generate once, then regenerate every time the IDL document is written.
Load and render errors after the first run are logged and the watch goes on.
Stops on interrupt.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd, rootOpts)
		},
	}
	addGeneratorFlags(cmd)
	return cmd
}

func runWatch(cmd *cobra.Command, opts *RootOptions) error {
	formatter := opts.formatter(cmd)
	log := opts.logger(cmd)
	defer log.Sync() //nolint:errcheck

	s, err := openSession(cmd, opts, formatter, log)
	if err != nil {
		return err
	}
	idlPath, err := filepath.Abs(s.cfg.IDL)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeNotFound, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return formatter.Fail(ExitFailure, ErrCodeGeneric, errors.Wrap(err, "starting file watcher"))
	}
	defer watcher.Close()
	// Editors often replace the file, so watch its directory.
	if err := watcher.Add(filepath.Dir(idlPath)); err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeNotFound, errors.Wrapf(err, "watching %s", filepath.Dir(idlPath)))
	}

	result, code, err := s.generate(false)
	if err != nil {
		return formatter.Fail(ExitCommandError, code, err)
	}
	if err := formatter.Success(result); err != nil {
		return err
	}

	regenerate := func() {
		s, err := openSession(cmd, opts, formatter, log)
		if err != nil {
			return
		}
		result, code, err := s.generate(false)
		if err != nil {
			_ = formatter.Error(code, err, nil)
			return
		}
		_ = formatter.Success(result)
	}

	log.Info("watching", zap.String("idl", idlPath))
	return watchLoop(cmd.Context(), watcher, idlPath, regenerate, log)
}

// watchLoop calls run for every write or create of target until ctx is done
// or the watcher closes.
func watchLoop(ctx context.Context, w *fsnotify.Watcher, target string, run func(), log *zap.Logger) error {
	for {
		select {
		case <-ctx.Done():
			log.Info("watch stopped")
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			log.Info("idl changed", zap.String("op", ev.Op.String()))
			run()
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Warn("watch error", zap.Error(err))
		}
	}
}
