package notify

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"strings"
	"unicode"
)

type fieldData struct {
	Name          string
	Reference     string
	Field         string
	Value         string
	HasValue      bool
	Link          string
	CustomerEmail string
}

type digestRow struct {
	Reference string
	Customer  string
	Fields    string
	Link      string
}

const layout = `{{define "layout"}}<!doctype html>
<html><body style="font-family:Helvetica,Arial,sans-serif;color:#1f2933;line-height:1.5">
{{template "body" .}}
<p style="color:#7b8794;font-size:12px">White Lotus, Bankastraeti 2, Reykjavik</p>
</body></html>{{end}}`

var bodies = map[string]string{
	string(KindChangeApproved): `{{define "body"}}<p>Hi {{.Name}},</p>
<p>Your change to <strong>{{.Field}}</strong> on booking {{.Reference}} has been approved.</p>
{{if .HasValue}}<p>New value: {{.Value}}</p>{{end}}
<p><a href="{{.Link}}">View your booking</a></p>{{end}}`,

	string(KindChangeRejected): `{{define "body"}}<p>Hi {{.Name}},</p>
<p>We were unable to accept your change to <strong>{{.Field}}</strong> on booking {{.Reference}}.
Reply to this email or contact us and we will find a solution together.</p>
<p><a href="{{.Link}}">View your booking</a></p>{{end}}`,

	string(KindBookingUpdated): `{{define "body"}}<p>Hi {{.Name}},</p>
<p>We have updated <strong>{{.Field}}</strong> on your booking {{.Reference}}.</p>
<p>New value: {{.Value}}</p>
<p><a href="{{.Link}}">View your booking</a></p>{{end}}`,

	string(KindApprovalNeeded): `{{define "body"}}<p>{{.CustomerEmail}} changed <strong>{{.Field}}</strong> on booking {{.Reference}}.</p>
<p>Requested value: {{.Value}}</p>
<p><a href="{{.Link}}">Review the change</a></p>{{end}}`,

	string(KindLowReview): `{{define "body"}}<p>A guest left low feedback.</p>
<ul>
<li>Overall: {{.OverallStars}} / 5</li>
<li>Recommend: {{.RecommendScore}} / 10</li>
<li>Locale: {{.Locale}}</li>
</ul>
{{if .ImproveOneThing}}<p>What to improve: {{.ImproveOneThing}}</p>{{end}}
<p>Feedback id {{.ID}}</p>{{end}}`,

	string(KindPendingDigest): `{{define "body"}}<p>These bookings have changes awaiting approval:</p>
<ul>
{{range .}}<li><a href="{{.Link}}">{{.Reference}}</a> {{.Customer}}: {{.Fields}}</li>
{{end}}</ul>{{end}}`,
}

var templates = func() map[string]*template.Template {
	out := make(map[string]*template.Template, len(bodies))
	for name, body := range bodies {
		t := template.Must(template.New(name).Parse(layout))
		out[name] = template.Must(t.Parse(body))
	}
	return out
}()

func render(name string, data any) (string, error) {
	t, ok := templates[name]
	if !ok {
		return "", fmt.Errorf("notify: unknown template %q", name)
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		return "", fmt.Errorf("notify: render %s: %w", name, err)
	}
	return buf.String(), nil
}

// fieldLabel turns "foodMenu.day1" into "Food menu / day1".
func fieldLabel(path string) string {
	parts := strings.Split(path, ".")
	parts[0] = humanize(parts[0])
	return strings.Join(parts, " / ")
}

func humanize(s string) string {
	var b strings.Builder
	for i, r := range s {
		switch {
		case i == 0:
			b.WriteRune(unicode.ToUpper(r))
		case unicode.IsUpper(r):
			b.WriteByte(' ')
			b.WriteRune(unicode.ToLower(r))
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func formatValue(v any) string {
	switch t := v.(type) {
	case nil:
		return "(empty)"
	case string:
		if t == "" {
			return "(empty)"
		}
		return t
	case bool:
		if t {
			return "Yes"
		}
		return "No"
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}
