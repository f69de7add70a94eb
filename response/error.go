package response

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"fmt"
)

// RenderError renders a minimal, non-leaking error document. text must
// already be safe for callers to see.
func RenderError(format string, code int, text string) []byte {
	if format == FormatJSON {
		body, err := json.Marshal(map[string]any{
			"errorresponse": map[string]any{
				"errorcode": code,
				"errortext": text,
			},
		})
		if err == nil {
			return body
		}
		return []byte(`{"errorresponse":{"errorcode":500,"errortext":"internal error"}}`)
	}

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	buf.WriteString("<errorresponse><errorcode>")
	fmt.Fprintf(&buf, "%d", code)
	buf.WriteString("</errorcode><errortext>")
	_ = xml.EscapeText(&buf, []byte(text))
	buf.WriteString("</errortext></errorresponse>")
	return buf.Bytes()
}

// RenderSuccess renders a minimal success document under the given root
// name, e.g. the logout acknowledgement.
func RenderSuccess(format, root string) []byte {
	if format == FormatJSON {
		return []byte(`{"` + root + `":{"description":"success"}}`)
	}
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	buf.WriteString("<" + root + "><description>success</description></" + root + ">")
	return buf.Bytes()
}
