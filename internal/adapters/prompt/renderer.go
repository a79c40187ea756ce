package prompt

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"text/template"

	"github.com/david-geiger/knowthelist/internal/ports"
)

// TranslateSingle is the prompt type for translating one message.
const TranslateSingle = "translate_single"

// Renderer renders prompts from built-in templates. Overrides are keyed
// "<type>.<role>", e.g. "translate_single.system".
type Renderer struct {
	Overrides map[string]string
}

func New(overrides map[string]string) *Renderer { return &Renderer{Overrides: overrides} }

var funcs = template.FuncMap{
	"join": strings.Join,
}

func (r *Renderer) Render(ctx context.Context, typ, role string, data ports.PromptData) (string, error) {
	body := r.Overrides[typ+"."+role]
	if body == "" {
		body = builtins[typ+"."+role]
	}
	if body == "" {
		return "", fmt.Errorf("no prompt template for %s/%s", typ, role)
	}
	tpl, err := template.New(typ + "." + role).Funcs(funcs).Parse(body)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return strings.TrimSpace(buf.String()), nil
}

var builtins = map[string]string{
	TranslateSingle + ".system": `You are a professional software localization translator working on a Qt application.
Translate the user interface string from {{.SrcLang}} to {{.TgtLang}}.
{{- if .Placeholders}}
Keep these tokens exactly as they are, each exactly once: {{join .Placeholders " "}}.
{{- end}}
{{- if .Tags}}
Keep these markup tokens in place: {{join .Tags " "}}.
{{- end}}
{{- if .Numerus}}
The string is shown next to a count; write one form that reads naturally for any count.
{{- end}}
An ampersand before a letter marks a keyboard accelerator: keep one ampersand before a suitable letter of the translation.
Keep leading and trailing whitespace and final punctuation. Keep the translation about as short as the source.
Return only JSON: {"translation":"..."}.`,

	TranslateSingle + ".user": `{{- if .Project}}project: {{.Project}}
{{end}}
{{- if .FilePath}}file: {{.FilePath}}
{{end}}
{{- if .Context}}context: {{.Context}}
{{end}}
{{- if .Comment}}disambiguation: {{.Comment}}
{{end}}
{{- if .ExtraComment}}developer note: {{.ExtraComment}}
{{end -}}
source: {{.Text}}`,
}
