package dom

import (
	"fmt"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

const noticeListClass = "file-upload__notices"

// Notifier shows short transient messages about rejected files.
type Notifier interface {
	Notify(message string)
	Clear()
}

// NoticeList renders notices as alerts inside the upload area.
type NoticeList struct {
	area *goquery.Selection
}

func NewNoticeList(area *goquery.Selection) *NoticeList {
	return &NoticeList{area: area}
}

func (n *NoticeList) Notify(message string) {
	list := n.area.Find("." + noticeListClass)
	if list.Length() == 0 {
		n.area.AppendHtml(fmt.Sprintf(`<div class="%s"></div>`, noticeListClass))
		list = n.area.Find("." + noticeListClass)
	}
	list.AppendHtml(fmt.Sprintf(`<p class="file-upload__notice" role="alert">%s</p>`, html.EscapeString(message)))
}

func (n *NoticeList) Clear() {
	n.area.Find("." + noticeListClass).Remove()
}

// Messages returns the notices currently shown.
func (n *NoticeList) Messages() []string {
	var out []string
	n.area.Find(".file-upload__notice").Each(func(_ int, s *goquery.Selection) {
		out = append(out, s.Text())
	})
	return out
}
