// Package submission validates the form, assembles the payload and hands it
// to the intake backend, keeping the loading state and banners in step.
package submission

import (
	"context"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/avirbig/cohen-services-hub/internal/config"
	"github.com/avirbig/cohen-services-hub/internal/dom"
	"github.com/avirbig/cohen-services-hub/internal/event"
	"github.com/avirbig/cohen-services-hub/internal/i18n"
	"github.com/avirbig/cohen-services-hub/internal/intake"
	"github.com/avirbig/cohen-services-hub/internal/logger"
	"github.com/avirbig/cohen-services-hub/internal/metrics"
	"github.com/avirbig/cohen-services-hub/internal/model"
	"github.com/avirbig/cohen-services-hub/internal/validate"
)

type State int

const (
	Idle State = iota
	Validating
	Submitting
)

func (s State) String() string {
	switch s {
	case Validating:
		return "validating"
	case Submitting:
		return "submitting"
	}
	return "idle"
}

// Store is the part of the attachment store a submission reads and resets.
type Store interface {
	Snapshot() model.Collection
	Clear()
}

// ResolveFunc picks the backend for a submission attempt.
type ResolveFunc func(cfg config.IntakeConfig, client intake.HTTPClient) (intake.Backend, error)

type Options struct {
	Loop     *event.Loop
	Mounts   dom.Mounts
	Store    Store
	Intake   config.IntakeConfig
	Client   intake.HTTPClient
	Resolve  ResolveFunc
	Messages i18n.Messages
	Metrics  *metrics.Form
	Tracer   trace.Tracer
}

type Controller struct {
	loop     *event.Loop
	mounts   dom.Mounts
	store    Store
	intake   config.IntakeConfig
	client   intake.HTTPClient
	resolve  ResolveFunc
	messages i18n.Messages
	metrics  *metrics.Form
	tracer   trace.Tracer

	state     State
	outcome   model.Outcome
	observers []func(model.Outcome)
}

func NewController(opts Options) *Controller {
	if opts.Resolve == nil {
		opts.Resolve = intake.Resolve
	}
	if opts.Tracer == nil {
		opts.Tracer = otel.Tracer("github.com/avirbig/cohen-services-hub/internal/submission")
	}
	return &Controller{
		loop:     opts.Loop,
		mounts:   opts.Mounts,
		store:    opts.Store,
		intake:   opts.Intake,
		client:   opts.Client,
		resolve:  opts.Resolve,
		messages: opts.Messages,
		metrics:  opts.Metrics,
		tracer:   opts.Tracer,
	}
}

func (c *Controller) State() State { return c.state }

// Outcome is the result of the latest submission attempt. It is the zero
// Outcome before the first one.
func (c *Controller) Outcome() model.Outcome { return c.outcome }

// OnOutcome registers fn to run on the loop whenever an outcome is set.
func (c *Controller) OnOutcome(fn func(model.Outcome)) {
	c.observers = append(c.observers, fn)
}

// ValidateField checks one control and shows or clears its error.
func (c *Controller) ValidateField(field *goquery.Selection) model.FieldState {
	fs := model.FieldState{
		Name:     dom.Name(field),
		Type:     dom.InputType(field),
		Value:    dom.Value(field),
		Checked:  dom.Checked(field),
		Required: dom.Required(field),
		Valid:    true,
	}

	var kind i18n.Kind
	switch {
	case fs.Type == model.InputCheckbox:
		if fs.Required && !fs.Checked {
			kind = i18n.ConsentRequired
		}
	case fs.Required && !validate.IsPresent(fs.Value):
		kind = i18n.RequiredField
	case fs.Type == model.InputTel && validate.IsPresent(fs.Value) && !validate.IsValidPhone(fs.Value):
		kind = i18n.InvalidPhone
	case fs.Type == model.InputEmail && validate.IsPresent(fs.Value) && !validate.IsValidEmail(fs.Value):
		kind = i18n.InvalidEmail
	}

	if kind == "" {
		dom.ClearFieldError(field)
		return fs
	}
	fs.Valid = false
	fs.Error = c.messages.Text(kind, nil)
	dom.ShowFieldError(field, fs.Error)
	return fs
}

// ValidateAll checks every field and shows all errors at once.
func (c *Controller) ValidateAll() bool {
	valid := true
	for _, fs := range c.Validate() {
		if !fs.Valid {
			valid = false
		}
	}
	return valid
}

// Validate is ValidateAll with the per-field results. The first invalid
// control in document order gets the focus marker.
func (c *Controller) Validate() []model.FieldState {
	var (
		states []model.FieldState
		first  *goquery.Selection
	)
	dom.Fields(c.mounts.Form).Each(func(_ int, s *goquery.Selection) {
		fs := c.ValidateField(s)
		if !fs.Valid && first == nil {
			first = s
		}
		states = append(states, fs)
	})
	dom.MarkFocus(c.mounts.Form, first)
	return states
}

// Payload assembles what a plain form post would send: checked boxes only,
// disabled controls skipped, names mapped for the intake, and the stored
// attachments under the configured file field.
func (c *Controller) Payload() intake.Payload {
	p := intake.Payload{FileField: c.intake.FileField}
	dom.Fields(c.mounts.Form).Each(func(_ int, s *goquery.Selection) {
		if _, disabled := s.Attr("disabled"); disabled {
			return
		}
		switch dom.InputType(s) {
		case "checkbox", "radio":
			if !dom.Checked(s) {
				return
			}
		}
		p.Fields = append(p.Fields, intake.Field{
			Name:  c.intake.MappedName(dom.Name(s)),
			Value: dom.Value(s),
		})
	})
	p.Files = c.store.Snapshot()
	return p
}

// Submit runs one submission attempt and reports whether a request was
// started. It is ignored while a previous attempt is still in flight.
func (c *Controller) Submit(ctx context.Context) bool {
	if c.state == Submitting {
		return false
	}
	ctx = logger.With(ctx, "submission_id", uuid.NewString())

	dom.ClearBanners(c.mounts.Form)

	c.state = Validating
	if !c.ValidateAll() {
		c.state = Idle
		logger.Debug(ctx, "submission blocked by validation")
		return false
	}

	backend, err := c.resolve(c.intake, c.client)
	if err != nil {
		c.state = Idle
		logger.Error(ctx, "intake unavailable", err, "backend", c.intake.Backend)
		dom.ShowFormError(c.mounts.Form, c.messages.Text(i18n.TechnicalError, nil))
		c.settle(model.Failure(err.Error()))
		return false
	}

	payload := c.Payload()
	c.state = Submitting
	c.outcome = model.Pending()
	dom.SetLoading(c.mounts, true)

	ctx, span := c.tracer.Start(ctx, "form.submit", trace.WithAttributes(
		attribute.String("intake.backend", backend.Name()),
		attribute.Int("form.fields", len(payload.Fields)),
		attribute.Int("form.attachments", payload.Files.Len()),
	))
	logger.Info(ctx, "submitting form", "backend", backend.Name(), "fields", len(payload.Fields), "attachments", payload.Files.Len())

	start := time.Now()
	c.loop.Go(func() func() {
		res := backend.Submit(ctx, payload)
		elapsed := time.Since(start)
		return func() {
			defer span.End()
			c.finish(ctx, span, backend.Name(), res, elapsed)
		}
	})
	return true
}

func (c *Controller) finish(ctx context.Context, span trace.Span, backend string, res intake.Result, elapsed time.Duration) {
	dom.SetLoading(c.mounts, false)
	c.state = Idle

	if res.OK {
		c.metrics.ObserveSubmission(backend, string(model.OutcomeSuccess), elapsed)
		span.SetStatus(codes.Ok, "")
		logger.Info(ctx, "submission accepted", "message", res.Message, "elapsed_ms", elapsed.Milliseconds())

		dom.ShowSuccess(c.mounts.Form, c.messages.Text(i18n.SubmitSuccess, nil))
		dom.ResetForm(c.mounts.Form)
		c.store.Clear()
		c.settle(model.Success(res.Message))
		return
	}

	c.metrics.ObserveSubmission(backend, string(model.OutcomeFailure), elapsed)
	span.RecordError(res.Err)
	span.SetStatus(codes.Error, "submission failed")
	logger.Error(ctx, "submission failed", res.Err, "message", res.Message, "elapsed_ms", elapsed.Milliseconds())

	dom.ShowFormError(c.mounts.Form, c.messages.Text(i18n.SubmitFailure, nil))
	reason := res.Message
	if res.Err != nil {
		reason = res.Err.Error()
	}
	c.settle(model.Failure(reason))
}

func (c *Controller) settle(o model.Outcome) {
	c.outcome = o
	for _, fn := range c.observers {
		fn(o)
	}
}
