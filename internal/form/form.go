// Package form assembles the contact form runtime from configuration: the
// attachment store, preview, drag and drop, and submission, all bound to
// one page and one event loop.
package form

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/avirbig/cohen-services-hub/internal/attachment"
	"github.com/avirbig/cohen-services-hub/internal/config"
	"github.com/avirbig/cohen-services-hub/internal/dom"
	"github.com/avirbig/cohen-services-hub/internal/dragdrop"
	"github.com/avirbig/cohen-services-hub/internal/event"
	"github.com/avirbig/cohen-services-hub/internal/i18n"
	"github.com/avirbig/cohen-services-hub/internal/intake"
	"github.com/avirbig/cohen-services-hub/internal/metrics"
	"github.com/avirbig/cohen-services-hub/internal/model"
	"github.com/avirbig/cohen-services-hub/internal/preview"
	"github.com/avirbig/cohen-services-hub/internal/submission"
)

type Options struct {
	Config   *config.AppConfig
	Loop     *event.Loop
	Page     *dom.Page
	MountIDs dom.MountIDs
	// Messages defaults to the translations for Config.Locale.
	Messages i18n.Messages
	// Client defaults to a traced client with the intake timeout.
	Client   intake.HTTPClient
	Resolve  submission.ResolveFunc
	Decoder  preview.Decoder
	Notifier dom.Notifier
	Metrics  *metrics.Form
	Logger   *slog.Logger
}

// Form is one mounted contact form. Everything except New must run on the
// loop; Do is the way in from other goroutines.
type Form struct {
	loop     *event.Loop
	page     *dom.Page
	mounts   dom.Mounts
	messages i18n.Messages
	log      *slog.Logger

	store   *attachment.Store
	input   *dom.FileInput
	notices dom.Notifier
	preview *preview.Renderer
	drag    *dragdrop.Controller
	submit  *submission.Controller

	handlers map[dom.EventType]func(context.Context, *dom.Event)
}

// New mounts the form on the page. Call it before the loop starts
// dispatching events for the page.
func New(opts Options) (*Form, error) {
	cfg := opts.Config
	if cfg == nil || opts.Loop == nil || opts.Page == nil {
		return nil, fmt.Errorf("form: config, loop and page are required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if opts.MountIDs == (dom.MountIDs{}) {
		opts.MountIDs = dom.DefaultMountIDs
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Messages == nil {
		t, err := i18n.NewTranslations(cfg.Locale, cfg.LocalesDir)
		if err != nil {
			return nil, err
		}
		opts.Messages = t
	}
	if opts.Client == nil {
		opts.Client = intake.NewHTTPClient(time.Duration(cfg.Intake.TimeoutSec) * time.Second)
	}

	mounts, err := opts.Page.Mounts(opts.MountIDs)
	if err != nil {
		return nil, err
	}

	f := &Form{
		loop:     opts.Loop,
		page:     opts.Page,
		mounts:   mounts,
		messages: opts.Messages,
		log:      opts.Logger,
		store: attachment.NewStore(attachment.Options{
			Capacity:     cfg.Upload.Capacity,
			AllowedTypes: cfg.Upload.AllowedTypes,
			MaxBytes:     cfg.Upload.MaxFileBytes(),
		}),
	}

	f.submit = submission.NewController(submission.Options{
		Loop:     opts.Loop,
		Mounts:   mounts,
		Store:    f.store,
		Intake:   cfg.Intake,
		Client:   opts.Client,
		Resolve:  opts.Resolve,
		Messages: opts.Messages,
		Metrics:  opts.Metrics,
	})

	if mounts.HasUpload() {
		if err := f.mountUpload(cfg, opts); err != nil {
			return nil, err
		}
	} else {
		f.log.Info("upload area not found, attachments disabled", "form", opts.MountIDs.Form)
	}

	f.handlers = map[dom.EventType]func(context.Context, *dom.Event){
		dom.Submit:    f.onSubmit,
		dom.Blur:      f.onBlur,
		dom.Input:     f.onInput,
		dom.Change:    f.onChange,
		dom.Click:     f.onClick,
		dom.DragEnter: f.onDrag,
		dom.DragOver:  f.onDrag,
		dom.DragLeave: f.onDrag,
		dom.Drop:      f.onDrag,
	}
	return f, nil
}

func (f *Form) mountUpload(cfg *config.AppConfig, opts Options) error {
	f.input = dom.NewFileInput(f.mounts.FileInput)
	f.notices = opts.Notifier
	if f.notices == nil {
		f.notices = dom.NewNoticeList(f.mounts.UploadArea)
	}

	decoder := opts.Decoder
	if decoder == nil {
		decoder = preview.NewThumbnailer(cfg.Upload.ThumbnailPx).
			WithPixelLimit(cfg.Upload.MaxImageMegapixels * 1_000_000)
	}
	r, err := preview.NewRenderer(preview.Options{
		Loop:      opts.Loop,
		Surface:   f.mounts.Preview,
		Store:     f.store,
		Decoder:   decoder,
		Messages:  opts.Messages,
		Metrics:   opts.Metrics,
		Logger:    opts.Logger,
		CacheSize: cfg.Upload.ThumbnailCacheSize,
		Workers:   cfg.Upload.PreviewWorkers,
	})
	if err != nil {
		return err
	}
	f.preview = r

	f.drag = dragdrop.NewController(dragdrop.Options{
		Area:     f.mounts.UploadArea,
		Label:    f.mounts.UploadLabel,
		Store:    f.store,
		Notices:  f.notices,
		Messages: opts.Messages,
		MaxMB:    cfg.Upload.MaxFileMB,
		Metrics:  opts.Metrics,
		Logger:   opts.Logger,
	})

	f.store.Subscribe(f.preview.Render)
	f.store.Subscribe(f.input.SetFiles)
	return nil
}

// Dispatch routes ev to its handler.
func (f *Form) Dispatch(ctx context.Context, ev *dom.Event) {
	if h, ok := f.handlers[ev.Type]; ok {
		h(ctx, ev)
	}
}

// Post queues ev for dispatch on the loop.
func (f *Form) Post(ctx context.Context, ev *dom.Event) {
	f.loop.Post(func() { f.Dispatch(ctx, ev) })
}

// Do runs fn on the loop and waits for it. It returns event.ErrClosed when
// the form's loop has stopped.
func (f *Form) Do(fn func(*Form)) error {
	return f.loop.Do(func() { fn(f) })
}

// Settle waits until the form has no pending work.
func (f *Form) Settle() { f.loop.Settle() }

// HandleLocation applies the page URL. A success=true query left by a
// redirecting intake shows the success banner and is dropped from the URL.
func (f *Form) HandleLocation(raw string) error {
	if err := f.page.SetLocation(raw); err != nil {
		return err
	}
	if f.page.Location().Query().Get("success") == "true" {
		dom.ShowSuccess(f.mounts.Form, f.messages.Text(i18n.SubmitSuccess, nil))
		f.page.ReplaceQuery("success")
	}
	return nil
}

// SetField types value into the named control.
func (f *Form) SetField(ctx context.Context, name, value string) error {
	field := dom.FieldByName(f.mounts.Form, name)
	if field.Length() == 0 {
		return fmt.Errorf("no field named %q", name)
	}
	if dom.InputType(field) == model.InputCheckbox {
		dom.SetChecked(field, value != "" && value != "false" && value != "0")
		f.Dispatch(ctx, &dom.Event{Type: dom.Change, Target: field.Get(0)})
		return nil
	}
	dom.SetValue(field, value)
	f.Dispatch(ctx, &dom.Event{Type: dom.Input, Target: field.Get(0)})
	f.Dispatch(ctx, &dom.Event{Type: dom.Blur, Target: field.Get(0)})
	return nil
}

// Attach selects files through the native file input.
func (f *Form) Attach(ctx context.Context, files []model.RawFile) error {
	if f.input == nil {
		return fmt.Errorf("form has no file input")
	}
	f.Dispatch(ctx, &dom.Event{Type: dom.Change, Target: f.mounts.FileInput.Get(0), Files: files})
	return nil
}

// Submit behaves like pressing the submit button.
func (f *Form) Submit(ctx context.Context) bool {
	ev := &dom.Event{Type: dom.Submit, Target: f.mounts.Form.Get(0)}
	f.Dispatch(ctx, ev)
	return f.submit.State() == submission.Submitting
}

func (f *Form) Page() *dom.Page                    { return f.page }
func (f *Form) Mounts() dom.Mounts                 { return f.mounts }
func (f *Form) Store() *attachment.Store           { return f.store }
func (f *Form) Submission() *submission.Controller { return f.submit }
func (f *Form) Preview() *preview.Renderer         { return f.preview }
func (f *Form) DragDrop() *dragdrop.Controller     { return f.drag }
func (f *Form) FileInput() *dom.FileInput          { return f.input }

func (f *Form) onSubmit(ctx context.Context, ev *dom.Event) {
	if !dom.Contains(f.mounts.Form, ev.Target) {
		return
	}
	ev.PreventDefault()
	f.submit.Submit(ctx)
}

func (f *Form) onBlur(_ context.Context, ev *dom.Event) {
	if field, ok := f.field(ev); ok {
		f.submit.ValidateField(field)
	}
}

// onInput re-validates only fields that already show an error, so typing
// does not nag before the first blur.
func (f *Form) onInput(_ context.Context, ev *dom.Event) {
	if field, ok := f.field(ev); ok && dom.HasFieldError(field) {
		f.submit.ValidateField(field)
	}
}

func (f *Form) onChange(ctx context.Context, ev *dom.Event) {
	if f.input != nil && ev.Target == f.mounts.FileInput.Get(0) {
		if len(ev.Files) > 0 {
			f.drag.AddFiles(ev.Files)
		}
		return
	}
	f.onInput(ctx, ev)
}

func (f *Form) onClick(_ context.Context, ev *dom.Event) {
	if f.preview != nil {
		f.preview.HandleRemove(ev.Target)
	}
}

func (f *Form) onDrag(_ context.Context, ev *dom.Event) {
	if f.drag != nil {
		f.drag.Dispatch(ev)
	}
}

// field resolves the event target to a form control inside the form.
func (f *Form) field(ev *dom.Event) (*goquery.Selection, bool) {
	if !dom.Contains(f.mounts.Form, ev.Target) {
		return nil, false
	}
	sel := f.page.Select(ev.Target)
	if !sel.Is(dom.FieldSelector) {
		return nil, false
	}
	return sel, true
}
