package response

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"fmt"

	"github.com/cloudgrid/api-gateway/models"
	"github.com/cloudgrid/api-gateway/session"
)

// Wire formats selectable through the response parameter. Anything other
// than FormatJSON renders XML, the historical default of the API.
const (
	FormatJSON = "json"
	FormatXML  = "xml"
)

// rootElement names the top-level object of the login document.
const rootElement = "loginresponse"

// ContentType returns the media type matching a response format value.
func ContentType(format string) string {
	if format == FormatJSON {
		return "application/json; charset=UTF-8"
	}
	return "text/xml; charset=UTF-8"
}

type field struct {
	name  string
	value any
}

// RenderLoginSuccess renders the session's attributes as a self-describing
// login document in the requested format. Attributes appear in the order
// the session store exposes them; the account-reference attribute is
// expanded into its identifier, display name, type and owning domain
// rather than serialized opaquely. The raw password attribute, if a caller
// ever stored one, is never echoed.
func RenderLoginSuccess(sess *session.Session, format string) ([]byte, error) {
	var fields []field
	for _, name := range sess.AttributeNames() {
		if name == session.ParamPassword {
			continue
		}
		value := sess.Attribute(name)
		if account, ok := value.(*models.Account); ok && name == session.AttrAccountObj {
			fields = append(fields,
				field{"accountid", account.UUID.String()},
				field{"account", account.Name},
				field{"accounttype", account.Type},
				field{"accountdomainid", account.DomainID},
			)
			continue
		}
		fields = append(fields, field{name, value})
	}

	if format == FormatJSON {
		return renderJSON(fields)
	}
	return renderXML(fields)
}

// renderJSON hand-assembles the object so field order follows the session
// store instead of Go map iteration.
func renderJSON(fields []field) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(`{"` + rootElement + `":{`)
	for i, f := range fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, err := json.Marshal(f.name)
		if err != nil {
			return nil, fmt.Errorf("marshal field name %q: %w", f.name, err)
		}
		value, err := json.Marshal(f.value)
		if err != nil {
			// Non-serializable attribute values degrade to their string
			// form rather than failing the login response.
			value, _ = json.Marshal(fmt.Sprint(f.value))
		}
		buf.Write(name)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteString("}}")
	return buf.Bytes(), nil
}

func renderXML(fields []field) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)

	root := xml.StartElement{Name: xml.Name{Local: rootElement}}
	if err := enc.EncodeToken(root); err != nil {
		return nil, fmt.Errorf("encode login response: %w", err)
	}
	for _, f := range fields {
		elem := xml.StartElement{Name: xml.Name{Local: f.name}}
		if err := enc.EncodeElement(fmt.Sprint(f.value), elem); err != nil {
			return nil, fmt.Errorf("encode login field %q: %w", f.name, err)
		}
	}
	if err := enc.EncodeToken(root.End()); err != nil {
		return nil, fmt.Errorf("encode login response: %w", err)
	}
	if err := enc.Flush(); err != nil {
		return nil, fmt.Errorf("flush login response: %w", err)
	}
	return buf.Bytes(), nil
}
