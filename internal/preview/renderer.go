// Package preview shows a card per attachment in the form's preview area.
// Thumbnails are produced off the event loop and applied to the card for
// the same attachment id when they arrive.
package preview

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/PuerkitoBio/goquery"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/net/html"
	"golang.org/x/sync/semaphore"

	"github.com/avirbig/cohen-services-hub/internal/event"
	"github.com/avirbig/cohen-services-hub/internal/i18n"
	"github.com/avirbig/cohen-services-hub/internal/metrics"
	"github.com/avirbig/cohen-services-hub/internal/model"
)

const (
	CardClass    = "file-preview"
	RemoveClass  = "file-preview__remove"
	FailedClass  = "file-preview--failed"
	loadingClass = "file-preview--loading"
	nameLimit    = 15
)

// Store is the part of the attachment store the renderer needs.
type Store interface {
	Has(id string) bool
	Remove(id string) bool
}

type Options struct {
	Loop      *event.Loop
	Surface   *goquery.Selection
	Store     Store
	Decoder   Decoder
	Messages  i18n.Messages
	Metrics   *metrics.Form
	Logger    *slog.Logger
	CacheSize int
	Workers   int
}

type Renderer struct {
	loop     *event.Loop
	surface  *goquery.Selection
	store    Store
	decoder  Decoder
	messages i18n.Messages
	metrics  *metrics.Form
	log      *slog.Logger

	cache   *lru.Cache[string, string]
	sem     *semaphore.Weighted
	pending map[string]struct{}
	failed  map[string]struct{}
}

func NewRenderer(opts Options) (*Renderer, error) {
	if opts.Loop == nil || opts.Surface == nil || opts.Store == nil {
		return nil, fmt.Errorf("preview: loop, surface and store are required")
	}
	if opts.CacheSize <= 0 {
		opts.CacheSize = 64
	}
	if opts.Workers <= 0 {
		opts.Workers = 4
	}
	if opts.Decoder == nil {
		opts.Decoder = NewThumbnailer(0)
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	cache, err := lru.New[string, string](opts.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("create thumbnail cache: %w", err)
	}

	return &Renderer{
		loop:     opts.Loop,
		surface:  opts.Surface,
		store:    opts.Store,
		decoder:  opts.Decoder,
		messages: opts.Messages,
		metrics:  opts.Metrics,
		log:      opts.Logger,
		cache:    cache,
		sem:      semaphore.NewWeighted(int64(opts.Workers)),
		pending:  make(map[string]struct{}),
		failed:   make(map[string]struct{}),
	}, nil
}

// Render rebuilds the preview area from c. Cards appear in collection order;
// attachments without a cached thumbnail get a loading card and a decode.
// An attachment whose decode failed keeps a card without an image so it
// can still be removed.
func (r *Renderer) Render(c model.Collection) {
	r.forget(c)
	r.surface.Empty()

	for i, a := range c {
		if _, bad := r.failed[a.ID]; bad {
			r.surface.AppendHtml(r.cardHTML(a, i, "", true))
			continue
		}
		src, ok := r.cache.Get(a.ID)
		r.surface.AppendHtml(r.cardHTML(a, i, src, false))
		if !ok {
			r.decode(a)
		}
	}
}

// Clear empties the preview area.
func (r *Renderer) Clear() {
	r.surface.Empty()
}

// HandleRemove is the click handler for the preview area. It reports
// whether target was a remove control.
func (r *Renderer) HandleRemove(target *html.Node) bool {
	if target == nil {
		return false
	}
	btn := r.surface.FindNodes(target).Closest("." + RemoveClass)
	if btn.Length() == 0 {
		return false
	}
	id, ok := btn.Attr("data-attachment-id")
	if !ok {
		return false
	}
	r.store.Remove(id)
	return true
}

// Card returns the card for id, if rendered.
func (r *Renderer) Card(id string) *goquery.Selection {
	return r.surface.Find("." + CardClass).FilterFunction(func(_ int, s *goquery.Selection) bool {
		return s.AttrOr("data-attachment-id", "") == id
	})
}

func (r *Renderer) decode(a model.Attachment) {
	if _, busy := r.pending[a.ID]; busy {
		return
	}
	r.pending[a.ID] = struct{}{}

	r.loop.Go(func() func() {
		_ = r.sem.Acquire(context.Background(), 1)
		src, err := r.decoder.Thumbnail(a)
		r.sem.Release(1)

		return func() {
			delete(r.pending, a.ID)
			if !r.store.Has(a.ID) {
				return
			}
			card := r.Card(a.ID)
			if err != nil {
				r.failed[a.ID] = struct{}{}
				r.metrics.ObserveDecodeFailure()
				r.log.Warn("preview decode failed", "attachment_id", a.ID, "name", a.Name, "type", a.Type, "error", err)
				card.RemoveClass(loadingClass).AddClass(FailedClass)
				card.Find("img").Remove()
				return
			}
			r.cache.Add(a.ID, src)
			card.RemoveClass(loadingClass)
			card.Find("img").SetAttr("src", src)
		}
	})
}

// forget drops cache and failure entries for attachments no longer in c.
func (r *Renderer) forget(c model.Collection) {
	for _, id := range r.cache.Keys() {
		if !c.Has(id) {
			r.cache.Remove(id)
		}
	}
	for id := range r.failed {
		if !c.Has(id) {
			delete(r.failed, id)
		}
	}
}

func (r *Renderer) cardHTML(a model.Attachment, index int, src string, failed bool) string {
	class := CardClass
	img := fmt.Sprintf(`<img src="%s" alt="%s">`, html.EscapeString(src), html.EscapeString(a.Name))
	switch {
	case failed:
		class += " " + FailedClass
		img = ""
	case src == "":
		class += " " + loadingClass
	}
	label := "Remove"
	if r.messages != nil {
		label = r.messages.Text(i18n.RemoveAttachment, nil)
	}
	return fmt.Sprintf(`<div class="%s" data-attachment-id="%s" data-index="%s">`+
		`%s`+
		`<button type="button" class="%s" data-attachment-id="%s" aria-label="%s">&times;</button>`+
		`<span class="file-preview__name">%s</span>`+
		`</div>`,
		class, html.EscapeString(a.ID), strconv.Itoa(index),
		img,
		RemoveClass, html.EscapeString(a.ID), html.EscapeString(label),
		html.EscapeString(DisplayName(a.Name)))
}

// DisplayName shortens long file names for the card label.
func DisplayName(name string) string {
	runes := []rune(name)
	if len(runes) <= nameLimit {
		return name
	}
	return string(runes[:nameLimit]) + "..."
}
