// Package dom hosts the form page as a goquery document and carries the small
// set of DOM helpers the form components share.
package dom

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/avirbig/cohen-services-hub/internal/apperrors"
)

//go:embed templates/contact.html
var contactPage []byte

// ContactPage returns a fresh copy of the built-in contact form page.
func ContactPage() (*Page, error) {
	return Parse(bytes.NewReader(contactPage))
}

// Page is one loaded document plus its location. It is not safe for
// concurrent use; callers keep all access on the event loop.
type Page struct {
	doc      *goquery.Document
	location *url.URL
}

func Parse(r io.Reader) (*Page, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse page: %w", err)
	}
	return &Page{doc: doc, location: &url.URL{Path: "/"}}, nil
}

func ParseString(s string) (*Page, error) {
	return Parse(strings.NewReader(s))
}

func (p *Page) Document() *goquery.Document { return p.doc }

func (p *Page) Find(selector string) *goquery.Selection { return p.doc.Find(selector) }

// ByID looks an element up by id without treating the id as a selector.
func (p *Page) ByID(id string) *goquery.Selection {
	return p.doc.FindMatcher(goquery.Single(fmt.Sprintf("[id=%q]", id)))
}

// Select wraps n in a selection rooted in this page.
func (p *Page) Select(n *html.Node) *goquery.Selection {
	if n == nil {
		return p.doc.FindNodes()
	}
	return p.doc.FindNodes(n)
}

func (p *Page) HTML() (string, error) {
	return goquery.OuterHtml(p.doc.Selection)
}

// Location is the page URL.
func (p *Page) Location() *url.URL {
	u := *p.location
	return &u
}

func (p *Page) SetLocation(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("parse location: %w", err)
	}
	p.location = u
	return nil
}

// ReplaceQuery drops key from the location, like history.replaceState with
// the bare pathname.
func (p *Page) ReplaceQuery(key string) {
	q := p.location.Query()
	q.Del(key)
	p.location.RawQuery = q.Encode()
}

// Contains reports whether n is root's node or a descendant of it. goquery's
// own Contains excludes the root, DOM Node.contains does not.
func Contains(root *goquery.Selection, n *html.Node) bool {
	if n == nil || root == nil {
		return false
	}
	for _, r := range root.Nodes {
		if r == n {
			return true
		}
	}
	return root.Contains(n)
}

// MountIDs names the elements the form components attach to.
type MountIDs struct {
	Form       string
	FileInput  string
	Preview    string
	UploadArea string
}

// DefaultMountIDs matches the built-in contact page.
var DefaultMountIDs = MountIDs{
	Form:       "contact-form",
	FileInput:  "photos",
	Preview:    "photos-preview",
	UploadArea: "file-upload-area",
}

// Mounts are the resolved elements. Upload mounts are optional; a page
// without them has a form but no attachments.
type Mounts struct {
	Form          *goquery.Selection
	Submit        *goquery.Selection
	SubmitText    *goquery.Selection
	SubmitLoading *goquery.Selection

	FileInput   *goquery.Selection
	Preview     *goquery.Selection
	UploadArea  *goquery.Selection
	UploadLabel *goquery.Selection
}

func (m Mounts) HasUpload() bool {
	return m.FileInput.Length() > 0 && m.Preview.Length() > 0 && m.UploadArea.Length() > 0
}

// Mounts resolves ids against the page. A missing form is a configuration
// failure; missing upload elements are not.
func (p *Page) Mounts(ids MountIDs) (Mounts, error) {
	form := p.ByID(ids.Form)
	if form.Length() == 0 {
		return Mounts{}, apperrors.ErrMountPointMissing.WithContext("id", ids.Form)
	}
	m := Mounts{
		Form:          form,
		Submit:        form.Find(".contact-form__submit").First(),
		SubmitText:    form.Find(".contact-form__submit-text").First(),
		SubmitLoading: form.Find(".contact-form__submit-loading").First(),
		FileInput:     p.ByID(ids.FileInput),
		Preview:       p.ByID(ids.Preview),
		UploadArea:    p.ByID(ids.UploadArea),
	}
	m.UploadLabel = m.UploadArea.Find(".file-upload__label").First()
	if m.Submit.Length() == 0 {
		return Mounts{}, apperrors.ErrMountPointMissing.WithContext("selector", ".contact-form__submit")
	}
	return m, nil
}
