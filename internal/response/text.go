package response

import "strings"

// Style is the formatting of a text run.
type Style struct {
	Bold          bool
	Italics       bool
	Strikethrough bool
}

// Run is a fragment of localized text.
type Run struct {
	Text  string
	Style Style
}

// Text is localized text in either of the document's two encodings:
// {"simpleText": "..."} or {"runs": [{"text": "..."}, ...]}.
type Text struct {
	Runs []Run
}

// PlainText returns a single-run Text.
func PlainText(s string) Text {
	return Text{Runs: []Run{{Text: s}}}
}

func (t Text) String() string {
	var b strings.Builder
	for _, r := range t.Runs {
		b.WriteString(r.Text)
	}
	return b.String()
}

var runFields = fields[Run]{
	"text":          str(func(r *Run) *string { return &r.Text }),
	"bold":          boolean(func(r *Run) *bool { return &r.Style.Bold }),
	"italics":       boolean(func(r *Run) *bool { return &r.Style.Italics }),
	"strikethrough": boolean(func(r *Run) *bool { return &r.Style.Strikethrough }),
}

var textFields = fields[Text]{
	"runs": list(func(t *Text) *[]Run { return &t.Runs }, decodeWith(runFields)),
	"simpleText": {decode: func(raw []byte, t *Text) error {
		var s string
		if err := unmarshal(raw, &s); err != nil {
			return err
		}
		if len(t.Runs) == 0 {
			*t = PlainText(s)
		}
		return nil
	}},
}
