package guard

import (
	"encoding/json"
	"fmt"
)

// Renderer turns a Decision into a display string. Renderers only format;
// they never take part in rule selection.
type Renderer interface {
	Render(d Decision) string
}

// TextRenderer renders the decision message, optionally followed by the
// matched rule ID.
type TextRenderer struct {
	ShowRule bool
}

// Render implements Renderer.
func (r TextRenderer) Render(d Decision) string {
	if r.ShowRule {
		return fmt.Sprintf("%s [%s]", d.Message, d.RuleID)
	}
	return d.Message
}

// JSONRenderer renders the decision as a single-line JSON object.
type JSONRenderer struct{}

// Render implements Renderer.
func (JSONRenderer) Render(d Decision) string {
	data, err := json.Marshal(d)
	if err != nil {
		// Decision holds only strings; marshaling cannot fail.
		return fmt.Sprintf(`{"message":%q}`, d.Message)
	}
	return string(data)
}

// Render formats d with the default text renderer.
func Render(d Decision) string {
	return TextRenderer{}.Render(d)
}

// NewRenderer returns the renderer for a named format ("text", "json").
// Unknown formats fall back to text.
func NewRenderer(format string, showRule bool) Renderer {
	switch format {
	case "json":
		return JSONRenderer{}
	default:
		return TextRenderer{ShowRule: showRule}
	}
}
