// Package attachment keeps the ordered, capacity-bounded set of files a
// visitor has attached to the form.
package attachment

import (
	"github.com/google/uuid"

	"github.com/avirbig/cohen-services-hub/internal/model"
	"github.com/avirbig/cohen-services-hub/internal/validate"
)

// Options configures a Store.
type Options struct {
	// Capacity is the maximum number of attachments. Values below 1 mean 1.
	Capacity     int
	AllowedTypes []string
	MaxBytes     int64
	// NewID generates attachment ids; uuid.NewString when nil.
	NewID func() string
}

// Observer is told about every change that actually altered the collection.
type Observer func(model.Collection)

// Store owns the attachment collection. It is not safe for concurrent use;
// the form calls it only from the event loop.
type Store struct {
	items        model.Collection
	capacity     int
	allowedTypes []string
	maxBytes     int64
	newID        func() string
	observers    []Observer
}

func NewStore(opts Options) *Store {
	s := &Store{
		capacity:     opts.Capacity,
		allowedTypes: opts.AllowedTypes,
		maxBytes:     opts.MaxBytes,
		newID:        opts.NewID,
	}
	if s.capacity < 1 {
		s.capacity = 1
	}
	if len(s.allowedTypes) == 0 {
		s.allowedTypes = validate.DefaultAllowedTypes
	}
	if s.maxBytes <= 0 {
		s.maxBytes = validate.MaxBytesFromMB(5)
	}
	if s.newID == nil {
		s.newID = uuid.NewString
	}
	return s
}

// Accept admits files in order. Once the store is full, that file and every
// remaining one in the batch is rejected for capacity; otherwise a file is
// checked for type, then size.
func (s *Store) Accept(files []model.RawFile) model.AcceptResult {
	var res model.AcceptResult
	for i, f := range files {
		if len(s.items) >= s.capacity {
			for _, rest := range files[i:] {
				res.Rejected = append(res.Rejected, model.Rejection{File: rest, Reason: model.CapacityExceeded})
			}
			break
		}
		if !validate.IsAcceptedFileType(f, s.allowedTypes) {
			res.Rejected = append(res.Rejected, model.Rejection{File: f, Reason: model.UnsupportedType})
			continue
		}
		if !validate.IsWithinSizeLimit(f, s.maxBytes) {
			res.Rejected = append(res.Rejected, model.Rejection{File: f, Reason: model.TooLarge})
			continue
		}
		a := model.Attachment{
			ID:   s.newID(),
			Name: f.Name,
			Type: f.Type,
			Size: f.Size,
			Data: f.Data,
		}
		s.items = append(s.items, a)
		res.Accepted = append(res.Accepted, a)
	}
	if len(res.Accepted) > 0 {
		s.notify()
	}
	return res
}

// RemoveAt drops the attachment at index. Out-of-range indexes are ignored.
func (s *Store) RemoveAt(index int) {
	if index < 0 || index >= len(s.items) {
		return
	}
	s.items = append(s.items[:index:index], s.items[index+1:]...)
	s.notify()
}

// Remove drops the attachment with id and reports whether it was present.
func (s *Store) Remove(id string) bool {
	i := s.items.IndexOf(id)
	if i < 0 {
		return false
	}
	s.RemoveAt(i)
	return true
}

func (s *Store) Clear() {
	if len(s.items) == 0 {
		return
	}
	s.items = nil
	s.notify()
}

// Snapshot returns a copy; later store changes do not show through it.
func (s *Store) Snapshot() model.Collection {
	out := make(model.Collection, len(s.items))
	copy(out, s.items)
	return out
}

func (s *Store) Has(id string) bool { return s.items.Has(id) }

func (s *Store) Len() int { return len(s.items) }

func (s *Store) Capacity() int { return s.capacity }

// Subscribe registers fn for change notifications.
func (s *Store) Subscribe(fn Observer) {
	s.observers = append(s.observers, fn)
}

func (s *Store) notify() {
	if len(s.observers) == 0 {
		return
	}
	snap := s.Snapshot()
	for _, fn := range s.observers {
		fn(snap)
	}
}
