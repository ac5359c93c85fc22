package alert

import (
	"fmt"
	"strings"
	"text/template"
)

const enTemplate = `According to DexWatch monitoring, {{.Amount1}} {{.Symbol1}}{{if gt .OriginValue1 1.0}} (${{.Value1}}){{end}} has just been swapped into {{.Amount0}} {{.Symbol0}}{{if gt .OriginValue0 1.0}} (${{.Value0}}){{end}}.
Sell/Quantity/Price: {{.Symbol1}} | {{.Amount1}} | {{if .Symbol1Price}}${{.Symbol1Price}}{{else}}-{{end}}
Buy/Quantity/Price: {{.Symbol0}} | {{.Amount0}} | {{if .Symbol0Price}}${{.Symbol0Price}}{{else}}-{{end}}
{{- if .AccountTag}}
TradeUser: {{.AccountTag}}{{if .Twitter}} (Twitter: @{{.Twitter}}){{end}}
{{- end}}
Address: {{.Sender}}
{{- if .TxURL}}
Tx: {{.TxURL}}
{{- end}}`

const zhTemplate = `据 DexWatch 监控，刚刚 {{.Amount1}} {{.Symbol1}}{{if gt .OriginValue1 1.0}}(${{.Value1}}){{end}} 兑换成 {{.Amount0}} {{.Symbol0}}{{if gt .OriginValue0 1.0}}(${{.Value0}}){{end}}。
卖出币种/数量/价格：{{.Symbol1}} ｜ {{.Amount1}} | {{if .Symbol1Price}}${{.Symbol1Price}}{{else}}-{{end}}
买入币种/数量/价格：{{.Symbol0}} ｜ {{.Amount0}} | {{if .Symbol0Price}}${{.Symbol0Price}}{{else}}-{{end}}
{{- if .AccountTag}}
用户：{{.AccountTag}}{{if .Twitter}} (Twitter: @{{.Twitter}}){{end}}
{{- end}}
地址: {{.Sender}}
{{- if .TxURL}}
交易: {{.TxURL}}
{{- end}}`

var templates = map[string]*template.Template{
	"en": template.Must(template.New("en").Parse(enTemplate)),
	"zh": template.Must(template.New("zh").Parse(zhTemplate)),
}

// Renderer renders an AlertView once per configured locale; every locale
// receives the identical view.
type Renderer struct {
	locales []string
}

func NewRenderer(locales []string) (*Renderer, error) {
	for _, locale := range locales {
		if _, ok := templates[locale]; !ok {
			return nil, fmt.Errorf("unknown alert locale %q", locale)
		}
	}
	return &Renderer{locales: locales}, nil
}

func (r *Renderer) RenderAll(view *AlertView) (map[string]string, error) {
	out := make(map[string]string, len(r.locales))
	for _, locale := range r.locales {
		var sb strings.Builder
		if err := templates[locale].Execute(&sb, view); err != nil {
			return nil, fmt.Errorf("render %s alert: %w", locale, err)
		}
		out[locale] = sb.String()
	}
	return out, nil
}
