package render

import (
	"html/template"
	"io"

	"github.com/microcosm-cc/bluemonday"
)

type FormView struct {
	Title         string      `json:"title,omitempty"`
	Action        string      `json:"action,omitempty"`
	RespondentRef string      `json:"respondentRef,omitempty"`
	ReadOnly      bool        `json:"readOnly"`
	Fields        []FieldView `json:"fields"`
}

type OptionView struct {
	Value    string `json:"value"`
	Selected bool   `json:"selected"`
}

type FieldView struct {
	ID          string       `json:"id"`
	Label       string       `json:"label"`
	Control     ControlKind  `json:"control"`
	Required    bool         `json:"required"`
	Placeholder string       `json:"placeholder,omitempty"`
	MaxLength   int          `json:"maxLength,omitempty"`
	Text        string       `json:"text,omitempty"`
	Options     []OptionView `json:"options,omitempty"`
	Selected    []string     `json:"selected,omitempty"`
	Error       string       `json:"error,omitempty"`
	Disabled    bool         `json:"disabled"`
}

// labelPolicy keeps the inline formatting operators use in labels and options and drops
// everything else.
var labelPolicy = func() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements("b", "strong", "i", "em", "u", "br")
	return p
}()

func sanitize(s string) template.HTML {
	return template.HTML(labelPolicy.Sanitize(s))
}

var formTemplate = template.Must(template.New("form").Funcs(template.FuncMap{
	"sanitize": sanitize,
}).Parse(`<form class="questionnaire" method="post"{{if .Action}} action="{{.Action}}"{{end}}>
{{- if .Title}}
<h1>{{sanitize .Title}}</h1>
{{- end}}
{{- if and .RespondentRef (not .ReadOnly)}}
<input type="hidden" name="respondentRef" value="{{.RespondentRef}}">
{{- end}}
{{- range .Fields}}
{{- if ne .Control "none"}}
<div class="field{{if .Error}} field-error{{end}}" data-field-id="{{.ID}}">
{{- if or (eq .Control "checkbox_group") (eq .Control "radio_group")}}
<fieldset>
<legend>{{sanitize .Label}}{{if .Required}} <span class="required">*</span>{{end}}</legend>
{{- $f := .}}
{{- range .Options}}
<label><input type="{{if eq $f.Control "checkbox_group"}}checkbox{{else}}radio{{end}}" name="{{$f.ID}}" value="{{.Value}}"{{if .Selected}} checked{{end}}{{if $f.Disabled}} disabled{{end}}> {{sanitize .Value}}</label>
{{- end}}
</fieldset>
{{- else}}
<label for="{{.ID}}">{{sanitize .Label}}{{if .Required}} <span class="required">*</span>{{end}}</label>
{{- if eq .Control "text_input"}}
<input type="text" id="{{.ID}}" name="{{.ID}}" value="{{.Text}}"{{if .Placeholder}} placeholder="{{.Placeholder}}"{{end}}{{if .MaxLength}} maxlength="{{.MaxLength}}"{{end}}{{if .Disabled}} disabled{{end}}>
{{- else if eq .Control "text_area"}}
<textarea id="{{.ID}}" name="{{.ID}}"{{if .Placeholder}} placeholder="{{.Placeholder}}"{{end}}{{if .MaxLength}} maxlength="{{.MaxLength}}"{{end}}{{if .Disabled}} disabled{{end}}>{{.Text}}</textarea>
{{- else if eq .Control "select"}}
<select id="{{.ID}}" name="{{.ID}}"{{if .Disabled}} disabled{{end}}>
<option value=""></option>
{{- range .Options}}
<option value="{{.Value}}"{{if .Selected}} selected{{end}}>{{sanitize .Value}}</option>
{{- end}}
</select>
{{- end}}
{{- end}}
{{- if .Error}}
<p class="error">{{.Error}}</p>
{{- end}}
</div>
{{- end}}
{{- end}}
{{- if not .ReadOnly}}
<button type="submit">Enviar</button>
{{- end}}
</form>
`))

// WriteHTML renders view as an HTML form. Fields without a control are skipped and read-only
// forms have every input disabled and no submit button.
func WriteHTML(w io.Writer, view FormView) error {
	return formTemplate.Execute(w, view)
}
