package orchestrators

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"

	"activityhub/internal/adapters/email"
	"activityhub/internal/domain/activity"
	"activityhub/internal/domain/student"
)

// mdRenderer converts notice markdown to HTML. Raw HTML in the source is
// dropped, so names and titles cannot inject markup.
var mdRenderer = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

// markdownEscaper neutralizes characters with markdown meaning in user text.
var markdownEscaper = strings.NewReplacer(
	`\`, `\\`, `*`, `\*`, `_`, `\_`, "`", "\\`", `[`, `\[`, `]`, `\]`,
	`<`, `&lt;`, `>`, `&gt;`, `#`, `\#`,
)

// RenderJoinNotice builds the confirmation email sent after a student joins
// an activity.
// PRE: st has an email address
// POST: Returns a request with subject, HTML and plain-text bodies
func RenderJoinNotice(st student.Student, act activity.Activity) (email.SendRequest, error) {
	md := fmt.Sprintf("Hi %s,\n\nYou're registered for **%s** (%s / %s) on %s.\n\nSee you there!",
		markdownEscaper.Replace(st.Name),
		markdownEscaper.Replace(act.Name),
		markdownEscaper.Replace(act.Type),
		markdownEscaper.Replace(act.Subcategory),
		act.Date,
	)

	var buf bytes.Buffer
	if err := mdRenderer.Convert([]byte(md), &buf); err != nil {
		return email.SendRequest{}, fmt.Errorf("render join notice: %w", err)
	}

	text := fmt.Sprintf("Hi %s,\n\nYou're registered for %s (%s / %s) on %s.\n\nSee you there!\n",
		st.Name, act.Name, act.Type, act.Subcategory, act.Date)

	return email.SendRequest{
		To:      []string{st.Email},
		Subject: "You're registered: " + act.Name,
		HTML:    buf.String(),
		Text:    text,
	}, nil
}
