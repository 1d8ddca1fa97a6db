package attachment

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avirbig/cohen-services-hub/internal/model"
)

func seqIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func jpeg(name string, size int64) model.RawFile {
	return model.RawFile{Name: name, Type: "image/jpeg", Size: size}
}

func newStore(capacity int) *Store {
	return NewStore(Options{Capacity: capacity, MaxBytes: 5 * 1024 * 1024, NewID: seqIDs()})
}

func TestStore_Accept(t *testing.T) {
	tests := []struct {
		name         string
		capacity     int
		preload      int
		files        []model.RawFile
		wantAccepted []string
		wantRejected []model.RejectionReason
	}{
		{
			name:         "all accepted",
			capacity:     5,
			files:        []model.RawFile{jpeg("a.jpg", 10), jpeg("b.jpg", 10)},
			wantAccepted: []string{"a.jpg", "b.jpg"},
		},
		{
			name:         "capacity overflow rejects the rest of the batch",
			capacity:     5,
			preload:      4,
			files:        []model.RawFile{jpeg("a.jpg", 10), jpeg("b.jpg", 10), jpeg("c.jpg", 10)},
			wantAccepted: []string{"a.jpg"},
			wantRejected: []model.RejectionReason{model.CapacityExceeded, model.CapacityExceeded},
		},
		{
			name:         "unsupported type",
			capacity:     5,
			files:        []model.RawFile{{Name: "doc.pdf", Type: "application/pdf", Size: 10}, jpeg("a.jpg", 10)},
			wantAccepted: []string{"a.jpg"},
			wantRejected: []model.RejectionReason{model.UnsupportedType},
		},
		{
			name:         "too large",
			capacity:     5,
			files:        []model.RawFile{jpeg("huge.jpg", 6*1024*1024)},
			wantRejected: []model.RejectionReason{model.TooLarge},
		},
		{
			name:         "type checked before size",
			capacity:     5,
			files:        []model.RawFile{{Name: "huge.gif", Type: "image/gif", Size: 6 * 1024 * 1024}},
			wantRejected: []model.RejectionReason{model.UnsupportedType},
		},
		{
			name:         "capacity checked before type",
			capacity:     1,
			preload:      1,
			files:        []model.RawFile{{Name: "doc.pdf", Type: "application/pdf", Size: 10}},
			wantRejected: []model.RejectionReason{model.CapacityExceeded},
		},
		{
			name:         "mime parameters and case ignored",
			capacity:     5,
			files:        []model.RawFile{{Name: "x.PNG", Type: "IMAGE/PNG; charset=binary", Size: 10}},
			wantAccepted: []string{"x.PNG"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newStore(tt.capacity)
			for i := 0; i < tt.preload; i++ {
				s.Accept([]model.RawFile{jpeg(fmt.Sprintf("pre-%d.jpg", i), 1)})
			}

			res := s.Accept(tt.files)

			var accepted []string
			for _, a := range res.Accepted {
				accepted = append(accepted, a.Name)
			}
			var rejected []model.RejectionReason
			for _, r := range res.Rejected {
				rejected = append(rejected, r.Reason)
			}
			assert.Equal(t, tt.wantAccepted, accepted)
			assert.Equal(t, tt.wantRejected, rejected)
			assert.Equal(t, len(tt.files), len(res.Accepted)+len(res.Rejected))
			assert.LessOrEqual(t, s.Len(), s.Capacity())
		})
	}
}

func TestStore_CapacityNormalized(t *testing.T) {
	s := NewStore(Options{Capacity: 0})
	assert.Equal(t, 1, s.Capacity())

	res := s.Accept([]model.RawFile{jpeg("a.jpg", 1), jpeg("b.jpg", 1)})
	assert.Len(t, res.Accepted, 1)
	assert.Len(t, res.Rejected, 1)
}

func TestStore_RemoveAt(t *testing.T) {
	tests := []struct {
		name      string
		files     []string
		removes   []int
		wantNames []string
		wantIDs   []string
	}{
		{
			name:      "middle of three",
			files:     []string{"a.jpg", "b.jpg", "c.jpg"},
			removes:   []int{1},
			wantNames: []string{"a.jpg", "c.jpg"},
			wantIDs:   []string{"id-1", "id-3"},
		},
		{
			name:      "out of range is a no-op",
			files:     []string{"a.jpg", "b.jpg"},
			removes:   []int{5, -1, 2},
			wantNames: []string{"a.jpg", "b.jpg"},
			wantIDs:   []string{"id-1", "id-2"},
		},
		{
			name:      "first of two keeps the second id",
			files:     []string{"f1.jpg", "f2.jpg"},
			removes:   []int{0},
			wantNames: []string{"f2.jpg"},
			wantIDs:   []string{"id-2"},
		},
		{
			name:      "index zero twice on a single item",
			files:     []string{"only.jpg"},
			removes:   []int{0, 0},
			wantNames: []string{},
			wantIDs:   []string{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newStore(5)
			var files []model.RawFile
			for _, n := range tt.files {
				files = append(files, jpeg(n, 1))
			}
			s.Accept(files)

			for _, i := range tt.removes {
				s.RemoveAt(i)
			}
			assert.Equal(t, tt.wantNames, s.Snapshot().Names())
			assert.Equal(t, tt.wantIDs, s.Snapshot().IDs())
			assert.Equal(t, len(tt.wantNames), s.Len())
			for _, id := range tt.wantIDs {
				assert.True(t, s.Has(id))
			}
		})
	}
}

func TestStore_Remove(t *testing.T) {
	s := newStore(5)
	s.Accept([]model.RawFile{jpeg("a.jpg", 1), jpeg("b.jpg", 1)})

	assert.True(t, s.Remove("id-1"))
	assert.False(t, s.Remove("id-1"))
	assert.False(t, s.Has("id-1"))
	assert.True(t, s.Has("id-2"))
	assert.Equal(t, 1, s.Len())
}

func TestStore_SnapshotIsACopy(t *testing.T) {
	s := newStore(5)
	s.Accept([]model.RawFile{jpeg("a.jpg", 1)})

	snap := s.Snapshot()
	snap[0].Name = "changed"
	s.Accept([]model.RawFile{jpeg("b.jpg", 1)})

	assert.Equal(t, 1, snap.Len())
	assert.Equal(t, []string{"a.jpg", "b.jpg"}, s.Snapshot().Names())
}

func TestStore_Observers(t *testing.T) {
	s := newStore(2)
	var seen [][]string
	s.Subscribe(func(c model.Collection) {
		seen = append(seen, c.Names())
	})

	s.Accept([]model.RawFile{jpeg("a.jpg", 1)})
	s.Accept([]model.RawFile{{Name: "x.pdf", Type: "application/pdf", Size: 1}})
	s.RemoveAt(3)
	s.Accept([]model.RawFile{jpeg("b.jpg", 1)})
	s.Remove("id-1")
	s.Clear()
	s.Clear()

	require.Len(t, seen, 4)
	assert.Equal(t, []string{"a.jpg"}, seen[0])
	assert.Equal(t, []string{"a.jpg", "b.jpg"}, seen[1])
	assert.Equal(t, []string{"b.jpg"}, seen[2])
	assert.Empty(t, seen[3])
}
