package intake

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/textproto"
	"strings"

	"github.com/avirbig/cohen-services-hub/internal/apperrors"
	"github.com/avirbig/cohen-services-hub/internal/config"
)

// JSONFile is how an attachment travels in a JSON payload.
type JSONFile struct {
	Field string `json:"field"`
	Name  string `json:"name"`
	Type  string `json:"type"`
	Size  int64  `json:"size"`
	Data  string `json:"data"`
}

// JSONBody is the JSON payload encoding.
type JSONBody struct {
	Fields []Field    `json:"fields"`
	Files  []JSONFile `json:"files,omitempty"`
}

// Encode serializes p. It returns the body and its content type.
func Encode(p Payload, encoding string) ([]byte, string, error) {
	switch encoding {
	case config.EncodingJSON:
		return encodeJSON(p)
	case config.EncodingMultipart, "":
		return encodeMultipart(p)
	default:
		return nil, "", apperrors.ErrPayloadEncoding.WithContext("encoding", encoding)
	}
}

func encodeMultipart(p Payload) ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for _, f := range p.Fields {
		if err := w.WriteField(f.Name, f.Value); err != nil {
			return nil, "", apperrors.ErrPayloadEncoding.WithError(err)
		}
	}
	for _, a := range p.Files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
			escapeQuotes(p.FileField), escapeQuotes(a.Name)))
		h.Set("Content-Type", a.Type)
		part, err := w.CreatePart(h)
		if err != nil {
			return nil, "", apperrors.ErrPayloadEncoding.WithError(err)
		}
		if _, err := part.Write(a.Data); err != nil {
			return nil, "", apperrors.ErrPayloadEncoding.WithError(err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", apperrors.ErrPayloadEncoding.WithError(err)
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}

func encodeJSON(p Payload) ([]byte, string, error) {
	body := JSONBody{Fields: p.Fields}
	if body.Fields == nil {
		body.Fields = []Field{}
	}
	for _, a := range p.Files {
		body.Files = append(body.Files, JSONFile{
			Field: p.FileField,
			Name:  a.Name,
			Type:  a.Type,
			Size:  a.Size,
			Data:  base64.StdEncoding.EncodeToString(a.Data),
		})
	}
	b, err := json.Marshal(body)
	if err != nil {
		return nil, "", apperrors.ErrPayloadEncoding.WithError(err)
	}
	return b, "application/json", nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}
