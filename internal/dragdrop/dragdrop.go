// Package dragdrop turns drag and drop on the upload area into attachment
// store changes and visual feedback.
package dragdrop

import (
	"log/slog"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/avirbig/cohen-services-hub/internal/dom"
	"github.com/avirbig/cohen-services-hub/internal/i18n"
	"github.com/avirbig/cohen-services-hub/internal/metrics"
	"github.com/avirbig/cohen-services-hub/internal/model"
)

const (
	AreaDraggingClass  = "file-upload--dragging"
	LabelDraggingClass = "dragover"
)

type State int

const (
	Idle State = iota
	DraggingOverTarget
)

func (s State) String() string {
	if s == DraggingOverTarget {
		return "dragging"
	}
	return "idle"
}

// Transition is the drag state machine. inside reports whether a node is the
// drop area or one of its descendants. Leaving into a child keeps the state.
func Transition(s State, ev *dom.Event, inside func(*html.Node) bool) State {
	switch ev.Type {
	case dom.DragEnter, dom.DragOver:
		return DraggingOverTarget
	case dom.DragLeave:
		if ev.RelatedTarget == nil || !inside(ev.RelatedTarget) {
			return Idle
		}
		return s
	case dom.Drop:
		return Idle
	}
	return s
}

// Store is the part of the attachment store the controller needs.
type Store interface {
	Accept(files []model.RawFile) model.AcceptResult
	Capacity() int
}

type Options struct {
	Area     *goquery.Selection
	Label    *goquery.Selection
	Store    Store
	Notices  dom.Notifier
	Messages i18n.Messages
	MaxMB    int
	Metrics  *metrics.Form
	Logger   *slog.Logger
}

type Controller struct {
	area     *goquery.Selection
	label    *goquery.Selection
	store    Store
	notices  dom.Notifier
	messages i18n.Messages
	maxMB    int
	metrics  *metrics.Form
	log      *slog.Logger

	state    State
	handlers map[dom.EventType]func(*dom.Event)
}

func NewController(opts Options) *Controller {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	c := &Controller{
		area:     opts.Area,
		label:    opts.Label,
		store:    opts.Store,
		notices:  opts.Notices,
		messages: opts.Messages,
		maxMB:    opts.MaxMB,
		metrics:  opts.Metrics,
		log:      opts.Logger,
	}
	c.handlers = map[dom.EventType]func(*dom.Event){
		dom.DragEnter: c.onDrag,
		dom.DragOver:  c.onDrag,
		dom.DragLeave: c.onDrag,
		dom.Drop:      c.onDrop,
	}
	return c
}

func (c *Controller) State() State { return c.state }

// Dispatch handles ev if it is a drag event aimed at the upload area and
// reports whether it did.
func (c *Controller) Dispatch(ev *dom.Event) bool {
	h, ok := c.handlers[ev.Type]
	if !ok || !c.inside(ev.Target) {
		return false
	}
	ev.PreventDefault()
	ev.StopPropagation()
	h(ev)
	return true
}

func (c *Controller) onDrag(ev *dom.Event) {
	c.state = Transition(c.state, ev, c.inside)
	c.feedback()
}

func (c *Controller) onDrop(ev *dom.Event) {
	c.state = Transition(c.state, ev, c.inside)
	c.feedback()
	if len(ev.Files) > 0 {
		c.AddFiles(ev.Files)
	}
}

// AddFiles offers files to the store and shows one notice per rejected file.
// Notices from the previous batch are cleared first.
func (c *Controller) AddFiles(files []model.RawFile) model.AcceptResult {
	if c.notices != nil {
		c.notices.Clear()
	}
	res := c.store.Accept(files)
	for _, r := range res.Rejected {
		c.metrics.ObserveRejection(r.Reason)
		c.log.Info("attachment rejected", "name", r.File.Name, "type", r.File.Type, "size", r.File.Size, "reason", r.Reason)
		if c.notices != nil && c.messages != nil {
			c.notices.Notify(c.rejectionText(r))
		}
	}
	return res
}

func (c *Controller) rejectionText(r model.Rejection) string {
	switch r.Reason {
	case model.CapacityExceeded:
		return c.messages.Text(i18n.TooManyFiles, map[string]interface{}{"Max": c.store.Capacity()})
	case model.UnsupportedType:
		return c.messages.Text(i18n.UnsupportedType, map[string]interface{}{"Name": r.File.Name})
	default:
		return c.messages.Text(i18n.FileTooLarge, map[string]interface{}{"Name": r.File.Name, "MaxMB": c.maxMB})
	}
}

func (c *Controller) inside(n *html.Node) bool {
	return dom.Contains(c.area, n)
}

func (c *Controller) feedback() {
	if c.state == DraggingOverTarget {
		c.area.AddClass(AreaDraggingClass)
		c.label.AddClass(LabelDraggingClass)
		return
	}
	c.area.RemoveClass(AreaDraggingClass)
	c.label.RemoveClass(LabelDraggingClass)
}
