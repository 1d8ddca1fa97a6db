package dom

import (
	"golang.org/x/net/html"

	"github.com/avirbig/cohen-services-hub/internal/model"
)

// EventType names a DOM event the form reacts to.
type EventType string

const (
	Submit    EventType = "submit"
	Blur      EventType = "blur"
	Input     EventType = "input"
	Change    EventType = "change"
	Click     EventType = "click"
	DragEnter EventType = "dragenter"
	DragOver  EventType = "dragover"
	DragLeave EventType = "dragleave"
	Drop      EventType = "drop"
)

// Event is a dispatched DOM event. Files carries the data transfer of a drop
// or the selection of a file input change.
type Event struct {
	Type          EventType
	Target        *html.Node
	RelatedTarget *html.Node
	Files         []model.RawFile

	defaultPrevented   bool
	propagationStopped bool
}

func (e *Event) PreventDefault()          { e.defaultPrevented = true }
func (e *Event) StopPropagation()         { e.propagationStopped = true }
func (e *Event) DefaultPrevented() bool   { return e.defaultPrevented }
func (e *Event) PropagationStopped() bool { return e.propagationStopped }
