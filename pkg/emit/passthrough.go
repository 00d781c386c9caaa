package emit

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/jmylchreest/htmd/pkg/dom"
)

// passthroughPolicy filters every literal tag the emitter writes, so raw
// HTML never carries event handlers, inline styles or script URLs even
// when tree sanitization is switched off.
var passthroughPolicy = func() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("class").Globally()
	return p
}()

var voidTags = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"source": true, "track": true, "wbr": true,
}

// openTag renders el's opening tag through the passthrough policy. It
// reports false when the policy rejects the element.
func (e *emitter) openTag(el *dom.Element) (string, bool) {
	var sb strings.Builder
	sb.WriteByte('<')
	sb.WriteString(el.Tag)
	for _, a := range el.Attrs {
		sb.WriteByte(' ')
		sb.WriteString(a.Key)
		sb.WriteString(`="`)
		sb.WriteString(html.EscapeString(a.Val))
		sb.WriteByte('"')
	}
	sb.WriteByte('>')

	clean := strings.TrimSpace(passthroughPolicy.Sanitize(sb.String()))
	if !strings.HasPrefix(clean, "<"+el.Tag) {
		return "", false
	}
	return clean, true
}

func closeTag(el *dom.Element) string {
	return "</" + el.Tag + ">"
}
