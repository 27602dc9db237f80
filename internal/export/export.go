// Package export renders a negotiation's settlement summary as a standalone
// HTML document: header, price summary, per-supplier item sections, the full
// term ledger, and the conversation transcript.
package export

import (
	"fmt"
	"html/template"
	"io"
	"strings"
	"time"

	"github.com/dealbridge/negotiation-api/internal/domain"
)

const timeFormat = "2006-01-02 15:04 UTC"

type summaryView struct {
	Name        string
	BuyerName   string
	CompanyName string
	Currency    string
	Status      string
	CreatedAt   string
	ConcludedAt string
	GeneratedAt string
	PriceRows   []priceRow
	Suppliers   []supplierView
	Terms       []termRow
	Messages    []messageView
}

type priceRow struct {
	ItemName    string
	Supplier    string
	TargetValue string
	QuotedValue string
	AgreedValue string
}

type supplierView struct {
	Name           string
	Email          string
	Representative string
	Items          []itemView
}

type itemView struct {
	Name        string
	Description string
	Quantity    string
	Unit        string
	Terms       []termRow
}

type termRow struct {
	ItemName     string
	TermType     string
	TargetValue  string
	QuotedValue  string
	CurrentValue string
	AgreedValue  string
}

type messageView struct {
	Role      string
	Content   string
	Timestamp string
}

// Render writes the settlement summary for a negotiation to w
func Render(w io.Writer, negotiation *domain.Negotiation) error {
	return summaryTemplate.Execute(w, buildView(negotiation))
}

func buildView(n *domain.Negotiation) summaryView {
	view := summaryView{
		Name:        n.Name,
		BuyerName:   n.BuyerName,
		CompanyName: n.CompanyName,
		Currency:    n.Currency,
		Status:      string(n.Status),
		CreatedAt:   n.CreatedAt.UTC().Format(timeFormat),
		GeneratedAt: time.Now().UTC().Format(timeFormat),
	}
	if n.ConcludedAt != nil {
		view.ConcludedAt = n.ConcludedAt.UTC().Format(timeFormat)
	}

	supplierNames := make(map[string]string, len(n.Suppliers))
	for i := range n.Suppliers {
		supplierNames[n.Suppliers[i].ID.String()] = n.Suppliers[i].Name
	}

	for i := range n.Items {
		item := &n.Items[i]
		for j := range item.Terms {
			t := &item.Terms[j]
			row := termView(t, item.Name)
			view.Terms = append(view.Terms, row)
			if t.TermType == domain.TermTypePrice {
				view.PriceRows = append(view.PriceRows, priceRow{
					ItemName:    item.Name,
					Supplier:    supplierNames[item.SupplierID.String()],
					TargetValue: t.TargetValue,
					QuotedValue: t.QuotedValue,
					AgreedValue: t.AgreedValue,
				})
			}
		}
	}
	for i := range n.Terms {
		view.Terms = append(view.Terms, termView(&n.Terms[i], ""))
	}

	for i := range n.Suppliers {
		s := &n.Suppliers[i]
		sv := supplierView{
			Name:           s.Name,
			Email:          s.Email,
			Representative: s.Representative,
		}
		for j := range n.Items {
			item := &n.Items[j]
			if item.SupplierID != s.ID {
				continue
			}
			iv := itemView{
				Name:        item.Name,
				Description: item.Description,
				Quantity:    item.Quantity,
				Unit:        item.Unit,
			}
			for k := range item.Terms {
				iv.Terms = append(iv.Terms, termView(&item.Terms[k], item.Name))
			}
			sv.Items = append(sv.Items, iv)
		}
		view.Suppliers = append(view.Suppliers, sv)
	}

	for i := range n.Messages {
		m := &n.Messages[i]
		view.Messages = append(view.Messages, messageView{
			Role:      m.Role.Display(),
			Content:   m.Content,
			Timestamp: m.Timestamp.UTC().Format(timeFormat),
		})
	}

	return view
}

func termView(t *domain.Term, itemName string) termRow {
	return termRow{
		ItemName:     itemName,
		TermType:     termTypeLabel(t.TermType),
		TargetValue:  t.TargetValue,
		QuotedValue:  orDash(t.QuotedValue),
		CurrentValue: orDash(t.CurrentValue),
		AgreedValue:  orDash(t.AgreedValue),
	}
}

func termTypeLabel(t domain.TermType) string {
	words := strings.Split(strings.ToLower(string(t)), "_")
	for i, w := range words {
		if w == "ld" {
			words[i] = "LD"
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

func orDash(v string) string {
	if v == "" {
		return "-"
	}
	return v
}

// Filename returns the suggested download filename for a negotiation summary
func Filename(n *domain.Negotiation) string {
	name := strings.ToLower(strings.TrimSpace(n.Name))
	name = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r == ' ', r == '-', r == '_':
			return '-'
		}
		return -1
	}, name)
	if name == "" {
		name = "negotiation"
	}
	return fmt.Sprintf("%s-summary.html", name)
}

var summaryTemplate = template.Must(template.New("summary").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Negotiation Summary - {{.Name}}</title>
<style>
body { font-family: Georgia, serif; margin: 40px auto; max-width: 900px; color: #1a1a1a; }
h1 { border-bottom: 3px solid #2c3e50; padding-bottom: 8px; }
h2 { color: #2c3e50; margin-top: 32px; }
table { border-collapse: collapse; width: 100%; margin: 12px 0; }
th, td { border: 1px solid #ccc; padding: 8px 12px; text-align: left; font-size: 14px; }
th { background: #f4f6f8; }
.meta { color: #555; font-size: 14px; }
.status { font-weight: bold; }
.transcript { border: 1px solid #ddd; padding: 12px; margin: 6px 0; }
.transcript .role { font-weight: bold; margin-right: 8px; }
.transcript .time { color: #888; font-size: 12px; float: right; }
footer { margin-top: 40px; color: #888; font-size: 12px; border-top: 1px solid #ddd; padding-top: 8px; }
</style>
</head>
<body>
<h1>{{.Name}}</h1>
<p class="meta">
Buyer: {{.BuyerName}} ({{.CompanyName}})<br>
Currency: {{.Currency}}<br>
Status: <span class="status">{{.Status}}</span><br>
Created: {{.CreatedAt}}{{if .ConcludedAt}}<br>Concluded: {{.ConcludedAt}}{{end}}
</p>

{{if .PriceRows}}
<h2>Price Summary</h2>
<table>
<tr><th>Item</th><th>Supplier</th><th>Target</th><th>Quoted</th><th>Agreed</th></tr>
{{range .PriceRows}}
<tr><td>{{.ItemName}}</td><td>{{.Supplier}}</td><td>{{.TargetValue}}</td><td>{{.QuotedValue}}</td><td>{{.AgreedValue}}</td></tr>
{{end}}
</table>
{{end}}

<h2>Suppliers and Items</h2>
{{range .Suppliers}}
<h3>{{.Name}}{{if .Representative}} &mdash; {{.Representative}}{{end}}</h3>
{{if .Email}}<p class="meta">{{.Email}}</p>{{end}}
{{range .Items}}
<p><strong>{{.Name}}</strong>{{if .Quantity}} ({{.Quantity}}{{if .Unit}} {{.Unit}}{{end}}){{end}}{{if .Description}}<br>{{.Description}}{{end}}</p>
{{end}}
{{end}}

{{if .Terms}}
<h2>Terms</h2>
<table>
<tr><th>Item</th><th>Term</th><th>Target</th><th>Quoted</th><th>Current</th><th>Agreed</th></tr>
{{range .Terms}}
<tr><td>{{.ItemName}}</td><td>{{.TermType}}</td><td>{{.TargetValue}}</td><td>{{.QuotedValue}}</td><td>{{.CurrentValue}}</td><td>{{.AgreedValue}}</td></tr>
{{end}}
</table>
{{end}}

{{if .Messages}}
<h2>Transcript</h2>
{{range .Messages}}
<div class="transcript"><span class="role">{{.Role}}</span><span class="time">{{.Timestamp}}</span><br>{{.Content}}</div>
{{end}}
{{end}}

<footer>Generated {{.GeneratedAt}}</footer>
</body>
</html>
`))
