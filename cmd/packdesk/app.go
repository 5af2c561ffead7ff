package main

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/packdesk/internal/command"
	"github.com/Faultbox/packdesk/internal/config"
	"github.com/Faultbox/packdesk/internal/editor"
	"github.com/Faultbox/packdesk/internal/logger"
	"github.com/Faultbox/packdesk/internal/session"
	"github.com/Faultbox/packdesk/internal/tree"
	"github.com/Faultbox/packdesk/internal/workbench"
	"github.com/Faultbox/packdesk/internal/worker"
	"github.com/Faultbox/packdesk/pkg/archive"
)

// app is one session wired to a running worker.
type app struct {
	ch   *command.Channel
	tree *tree.Tree
	win  *workbench.Window
	sess *session.Session

	cancel context.CancelFunc
	done   <-chan error
}

// openApp starts a worker and a session on top of it. Save prompts are
// answered by prompt.
func openApp(cfg *config.Config, prompt session.Prompter) (*app, error) {
	ch := command.New(command.WithLogger(logger.Named("channel")))
	ctx, cancel := context.WithCancel(context.Background())
	done := worker.Start(ctx, ch.Endpoint(), logger.Named("worker"))

	a := &app{
		ch:     ch,
		tree:   tree.New(),
		win:    workbench.New(logger.Named("workbench")),
		cancel: cancel,
		done:   done,
	}

	s, err := session.New(session.Options{
		Channel:   ch,
		Tree:      a.tree,
		Window:    a.win,
		Prompter:  prompt,
		Factory:   editor.NewFactory(ch, logger.Named("editor")),
		Config:    cfg,
		StateFile: config.TableStatePath(),
		Log:       logger.Named("session"),
	})
	if err != nil {
		a.stop()
		return nil, err
	}
	a.sess = s
	return a, nil
}

// openPack starts a session editing the pack at path.
func openPack(ctx context.Context, cfg *config.Config, path string, prompt session.Prompter) (*app, error) {
	a, err := openApp(cfg, prompt)
	if err != nil {
		return nil, err
	}
	if err := a.sess.OpenDocument(ctx, []string{path}, ""); err != nil {
		a.stop()
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	return a, nil
}

func (a *app) stop() {
	a.ch.Close()
	a.cancel()
	if err := <-a.done; err != nil && !errors.Is(err, context.Canceled) {
		logger.Warn("worker stopped with error", zap.Error(err))
	}
}

// close persists session state and stops the worker.
func (a *app) close() error {
	err := a.sess.Close()
	a.stop()
	return err
}

// read returns the raw bytes of an entry.
func (a *app) read(ctx context.Context, p archive.Path) ([]byte, error) {
	resp, err := a.ch.Call(ctx, command.DecodeEntry{Path: p})
	if err != nil {
		return nil, err
	}
	switch r := resp.(type) {
	case command.EntryData:
		return r.Data, nil
	case command.Error:
		return nil, r.Err
	default:
		return nil, fmt.Errorf("unexpected response %s", resp.Name())
	}
}
