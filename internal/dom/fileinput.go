package dom

import (
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/avirbig/cohen-services-hub/internal/model"
)

// FileInput mirrors the attachment store onto the native file input so a
// plain form post would carry the same files.
type FileInput struct {
	sel   *goquery.Selection
	files model.Collection
}

func NewFileInput(sel *goquery.Selection) *FileInput {
	return &FileInput{sel: sel}
}

// SetFiles replaces the mirrored list with c.
func (f *FileInput) SetFiles(c model.Collection) {
	f.files = append(model.Collection(nil), c...)
	if len(f.files) == 0 {
		f.sel.RemoveAttr("data-files")
		f.sel.RemoveAttr("data-file-count")
		return
	}
	f.sel.SetAttr("data-files", strings.Join(f.files.Names(), ", "))
	f.sel.SetAttr("data-file-count", strconv.Itoa(len(f.files)))
}

func (f *FileInput) Files() model.Collection {
	return append(model.Collection(nil), f.files...)
}

func (f *FileInput) Reset() {
	f.SetFiles(nil)
}

// Name is the input's form field name.
func (f *FileInput) Name() string {
	return Name(f.sel)
}
