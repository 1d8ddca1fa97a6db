package dom

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const (
	defaultValueAttr   = "data-default-value"
	defaultCheckedAttr = "data-default-checked"
)

// FieldSelector matches the controls that take part in validation and
// payload assembly.
const FieldSelector = "input[name], textarea[name], select[name]"

// Fields lists the named controls of form in document order, skipping
// buttons, hidden inputs and file inputs.
func Fields(form *goquery.Selection) *goquery.Selection {
	return form.Find(FieldSelector).FilterFunction(func(_ int, s *goquery.Selection) bool {
		switch InputType(s) {
		case "submit", "button", "reset", "image", "hidden", "file":
			return false
		}
		return true
	})
}

// FieldByName returns the first control named name.
func FieldByName(form *goquery.Selection, name string) *goquery.Selection {
	return form.Find(FieldSelector).FilterFunction(func(_ int, s *goquery.Selection) bool {
		return Name(s) == name
	}).First()
}

func Name(s *goquery.Selection) string {
	return s.AttrOr("name", "")
}

// InputType is the lowercased type of an input, or the tag name for
// textarea and select.
func InputType(s *goquery.Selection) string {
	switch goquery.NodeName(s) {
	case "textarea":
		return "textarea"
	case "select":
		return "select"
	}
	t := strings.ToLower(strings.TrimSpace(s.AttrOr("type", "")))
	if t == "" {
		return "text"
	}
	return t
}

func Required(s *goquery.Selection) bool {
	_, ok := s.Attr("required")
	return ok
}

// Value is the control's current value.
func Value(s *goquery.Selection) string {
	switch goquery.NodeName(s) {
	case "textarea":
		return s.Text()
	case "select":
		opt := s.Find("option[selected]").First()
		if opt.Length() == 0 {
			opt = s.Find("option").First()
		}
		if v, ok := opt.Attr("value"); ok {
			return v
		}
		return strings.TrimSpace(opt.Text())
	}
	if InputType(s) == "checkbox" || InputType(s) == "radio" {
		return s.AttrOr("value", "on")
	}
	return s.AttrOr("value", "")
}

// SetValue changes the control's value, keeping the original around for Reset.
func SetValue(s *goquery.Selection, v string) {
	switch goquery.NodeName(s) {
	case "textarea":
		if _, ok := s.Attr(defaultValueAttr); !ok {
			s.SetAttr(defaultValueAttr, s.Text())
		}
		s.SetText(v)
	case "select":
		s.Find("option").Each(func(_ int, opt *goquery.Selection) {
			ov, ok := opt.Attr("value")
			if !ok {
				ov = strings.TrimSpace(opt.Text())
			}
			if _, ok := opt.Attr(defaultCheckedAttr); !ok {
				_, sel := opt.Attr("selected")
				opt.SetAttr(defaultCheckedAttr, boolAttr(sel))
			}
			if ov == v {
				opt.SetAttr("selected", "")
			} else {
				opt.RemoveAttr("selected")
			}
		})
	default:
		if _, ok := s.Attr(defaultValueAttr); !ok {
			s.SetAttr(defaultValueAttr, s.AttrOr("value", ""))
		}
		s.SetAttr("value", v)
	}
}

func Checked(s *goquery.Selection) bool {
	_, ok := s.Attr("checked")
	return ok
}

func SetChecked(s *goquery.Selection, on bool) {
	if _, ok := s.Attr(defaultCheckedAttr); !ok {
		s.SetAttr(defaultCheckedAttr, boolAttr(Checked(s)))
	}
	if on {
		s.SetAttr("checked", "")
	} else {
		s.RemoveAttr("checked")
	}
}

// ResetForm restores every control to the value it had when the page loaded.
func ResetForm(form *goquery.Selection) {
	form.Find("input, textarea").Each(func(_ int, s *goquery.Selection) {
		if def, ok := s.Attr(defaultValueAttr); ok {
			if goquery.NodeName(s) == "textarea" {
				s.SetText(def)
			} else if def == "" {
				s.RemoveAttr("value")
			} else {
				s.SetAttr("value", def)
			}
			s.RemoveAttr(defaultValueAttr)
		}
		if def, ok := s.Attr(defaultCheckedAttr); ok {
			if def == "true" {
				s.SetAttr("checked", "")
			} else {
				s.RemoveAttr("checked")
			}
			s.RemoveAttr(defaultCheckedAttr)
		}
	})
	form.Find("select option").Each(func(_ int, opt *goquery.Selection) {
		if def, ok := opt.Attr(defaultCheckedAttr); ok {
			if def == "true" {
				opt.SetAttr("selected", "")
			} else {
				opt.RemoveAttr("selected")
			}
			opt.RemoveAttr(defaultCheckedAttr)
		}
	})
}

func boolAttr(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
