package model

// RawFile is a candidate file as delivered by a drop or a file-input change.
// Size is the declared byte size; it is what size limits are checked against.
type RawFile struct {
	Name string
	Type string
	Size int64
	Data []byte
}

// Attachment is a file accepted into the submission payload.
// ID is stable for the attachment's lifetime and is what async work refers to;
// positions are derived from the owning Collection at render time.
type Attachment struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
	Size int64  `json:"size"`
	Data []byte `json:"-"`
}

// Collection is an ordered list of attachments; insertion order is display order.
type Collection []Attachment

func (c Collection) Len() int { return len(c) }

// IndexOf returns the current position of the attachment with id, or -1.
func (c Collection) IndexOf(id string) int {
	for i := range c {
		if c[i].ID == id {
			return i
		}
	}
	return -1
}

func (c Collection) Has(id string) bool { return c.IndexOf(id) >= 0 }

func (c Collection) IDs() []string {
	ids := make([]string, len(c))
	for i := range c {
		ids[i] = c[i].ID
	}
	return ids
}

func (c Collection) Names() []string {
	names := make([]string, len(c))
	for i := range c {
		names[i] = c[i].Name
	}
	return names
}

// RejectionReason says why a candidate file was not accepted.
type RejectionReason string

const (
	CapacityExceeded RejectionReason = "capacity_exceeded"
	UnsupportedType  RejectionReason = "unsupported_type"
	TooLarge         RejectionReason = "too_large"
)

type Rejection struct {
	File   RawFile
	Reason RejectionReason
}

// AcceptResult reports every candidate of one Accept call exactly once.
type AcceptResult struct {
	Accepted []Attachment
	Rejected []Rejection
}
