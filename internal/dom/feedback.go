package dom

import (
	"fmt"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

const (
	SuccessBannerClass = "form-success-message"
	ErrorBannerClass   = "form-error-alert"
	FieldErrorClass    = "form-error-message"
	InputErrorClass    = "form-input-error"
	HiddenClass        = "hidden"

	// FocusAttr marks the control that should take focus after validation.
	FocusAttr = "data-focus"
)

// ShowFieldError marks field invalid and attaches message inside its
// .form-group. Fields outside a group are left alone.
func ShowFieldError(field *goquery.Selection, message string) {
	group := field.Closest(".form-group")
	if group.Length() == 0 {
		return
	}
	ClearFieldError(field)

	field.AddClass(InputErrorClass)
	field.SetAttr("aria-invalid", "true")

	errorID := field.AttrOr("id", Name(field)) + "-error"
	group.AppendHtml(fmt.Sprintf(`<span class="%s" id="%s" role="alert">%s</span>`,
		FieldErrorClass, html.EscapeString(errorID), html.EscapeString(message)))
	field.SetAttr("aria-describedby", errorID)
}

func ClearFieldError(field *goquery.Selection) {
	group := field.Closest(".form-group")
	if group.Length() == 0 {
		return
	}
	field.RemoveClass(InputErrorClass)
	field.RemoveAttr("aria-invalid")
	field.RemoveAttr("aria-describedby")
	group.Find("." + FieldErrorClass).Remove()
}

// HasFieldError reports whether field currently shows an error.
func HasFieldError(field *goquery.Selection) bool {
	return field.HasClass(InputErrorClass)
}

// FieldError returns the message shown for field, if any.
func FieldError(field *goquery.Selection) string {
	group := field.Closest(".form-group")
	return group.Find("." + FieldErrorClass).First().Text()
}

// ShowSuccess puts the success banner at the top of form, replacing any
// banner already shown.
func ShowSuccess(form *goquery.Selection, message string) {
	ClearBanners(form)
	form.PrependHtml(fmt.Sprintf(`<div class="%s" role="status" aria-live="polite"><p>%s</p></div>`,
		SuccessBannerClass, html.EscapeString(message)))
}

// ShowFormError puts the error banner at the top of form, replacing any
// banner already shown.
func ShowFormError(form *goquery.Selection, message string) {
	ClearBanners(form)
	form.PrependHtml(fmt.Sprintf(`<div class="%s" role="alert"><p>%s</p></div>`,
		ErrorBannerClass, html.EscapeString(message)))
}

func ClearBanners(form *goquery.Selection) {
	form.Find("." + SuccessBannerClass).Remove()
	form.Find("." + ErrorBannerClass).Remove()
}

// MarkFocus moves the focus marker inside form to field. An empty field
// only clears it.
func MarkFocus(form, field *goquery.Selection) {
	form.Find("[" + FocusAttr + "]").RemoveAttr(FocusAttr)
	if field != nil && field.Length() > 0 {
		field.First().SetAttr(FocusAttr, "true")
	}
}

// Focused returns the control carrying the focus marker.
func Focused(form *goquery.Selection) *goquery.Selection {
	return form.Find("[" + FocusAttr + "]")
}

// ClearFieldErrors removes every field error inside form.
func ClearFieldErrors(form *goquery.Selection) {
	Fields(form).Each(func(_ int, s *goquery.Selection) {
		ClearFieldError(s)
	})
}

// SetLoading disables the submit button and swaps its label for the
// loading indicator, or restores it.
func SetLoading(m Mounts, on bool) {
	if on {
		m.Submit.SetAttr("disabled", "")
		m.SubmitText.AddClass(HiddenClass)
		m.SubmitLoading.RemoveClass(HiddenClass)
		m.SubmitLoading.SetAttr("aria-hidden", "false")
		return
	}
	m.Submit.RemoveAttr("disabled")
	m.SubmitText.RemoveClass(HiddenClass)
	m.SubmitLoading.AddClass(HiddenClass)
	m.SubmitLoading.SetAttr("aria-hidden", "true")
}

// Loading reports whether the submit button is in its loading state.
func Loading(m Mounts) bool {
	_, disabled := m.Submit.Attr("disabled")
	return disabled
}
