package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/urfave/cli/v3"

	"github.com/avirbig/cohen-services-hub/internal/config"
	"github.com/avirbig/cohen-services-hub/internal/dom"
	"github.com/avirbig/cohen-services-hub/internal/event"
	"github.com/avirbig/cohen-services-hub/internal/form"
	"github.com/avirbig/cohen-services-hub/internal/logger"
	"github.com/avirbig/cohen-services-hub/internal/model"
)

var (
	errInvalidForm  = errors.New("form has invalid fields")
	errNotSubmitted = errors.New("form was not submitted")
)

// session is one mounted form running on its own loop.
type session struct {
	form     *form.Form
	stop     func()
	fields   []string
	attach   []string
	location string
	out      string
}

// submitResult is what the page shows once a submit attempt settles.
type submitResult struct {
	started bool
	outcome model.Outcome
	states  []model.FieldState
	success string
	failure string
}

func openSession(ctx context.Context, cmd *cli.Command) (*session, error) {
	var (
		cfg *config.AppConfig
		err error
	)
	if p := cmd.String("profile"); p != "" {
		cfg, err = config.LoadProfile(p)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}
	if lang := cmd.String("lang"); lang != "" {
		cfg.Locale = lang
	}

	page, err := loadPage(cmd.String("page"))
	if err != nil {
		return nil, err
	}

	errw := cmd.Root().ErrWriter
	log := logger.New(errw, logger.FormatPretty, logger.ParseLevel(cfg.Log.Level))

	loop := event.NewLoop()
	stop := loop.Start(ctx)

	f, err := form.New(form.Options{
		Config:   cfg,
		Loop:     loop,
		Page:     page,
		Notifier: newConsoleNotifier(errw),
		Logger:   log,
	})
	if err != nil {
		stop()
		return nil, err
	}

	return &session{
		form:     f,
		stop:     stop,
		fields:   cmd.StringSlice("field"),
		attach:   cmd.StringSlice("attach"),
		location: cmd.String("location"),
		out:      cmd.String("out"),
	}, nil
}

func (s *session) close() { s.stop() }

func loadPage(path string) (*dom.Page, error) {
	if path == "" {
		return dom.ContactPage()
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return dom.Parse(f)
}

// fill applies the location, field values and attachments, in that order,
// the way a visitor would.
func (s *session) fill(ctx context.Context) error {
	files, err := readFiles(s.attach)
	if err != nil {
		return err
	}
	pairs, err := parseFields(s.fields)
	if err != nil {
		return err
	}

	doErr := s.form.Do(func(f *form.Form) {
		if s.location != "" {
			if err = f.HandleLocation(s.location); err != nil {
				return
			}
		}
		for _, p := range pairs {
			if err = f.SetField(ctx, p[0], p[1]); err != nil {
				return
			}
		}
		if len(files) > 0 {
			err = f.Attach(ctx, files)
		}
	})
	if doErr != nil {
		return doErr
	}
	if err != nil {
		return err
	}
	// Let thumbnails finish so the written page is complete.
	s.form.Settle()
	return nil
}

func (s *session) validate() ([]model.FieldState, error) {
	var states []model.FieldState
	err := s.form.Do(func(f *form.Form) {
		states = f.Submission().Validate()
	})
	return states, err
}

func (s *session) submit(ctx context.Context) (submitResult, error) {
	var res submitResult
	if err := s.form.Do(func(f *form.Form) {
		res.started = f.Submit(ctx)
	}); err != nil {
		return res, err
	}
	s.form.Settle()

	err := s.form.Do(func(f *form.Form) {
		res.outcome = f.Submission().Outcome()
		root := f.Mounts().Form
		res.success = strings.TrimSpace(root.Find("." + dom.SuccessBannerClass).Text())
		res.failure = strings.TrimSpace(root.Find("." + dom.ErrorBannerClass).Text())
		if !res.started && !res.outcome.IsSettled() {
			res.states = f.Submission().Validate()
		}
	})
	return res, err
}

func (s *session) writePage() error {
	if s.out == "" {
		return nil
	}
	var (
		doc string
		err error
	)
	if doErr := s.form.Do(func(f *form.Form) {
		doc, err = f.Page().HTML()
	}); doErr != nil {
		return doErr
	}
	if err != nil {
		return err
	}
	return os.WriteFile(s.out, []byte(doc), 0o644)
}

// parseFields splits name=value pairs. The value may itself contain '='.
func parseFields(raw []string) ([][2]string, error) {
	pairs := make([][2]string, 0, len(raw))
	for _, r := range raw {
		name, value, ok := strings.Cut(r, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid field %q, want name=value", r)
		}
		pairs = append(pairs, [2]string{name, value})
	}
	return pairs, nil
}

// readFiles loads attachments from disk, sniffing the type from content as a
// browser would report it.
func readFiles(paths []string) ([]model.RawFile, error) {
	files := make([]model.RawFile, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		mediaType, _, _ := strings.Cut(mimetype.Detect(data).String(), ";")
		files = append(files, model.RawFile{
			Name: filepath.Base(path),
			Type: strings.TrimSpace(mediaType),
			Size: int64(len(data)),
			Data: data,
		})
	}
	return files, nil
}
