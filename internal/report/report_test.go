package report

import (
	"strings"
	"testing"

	"github.com/theirongolddev/fintrack/internal/date"
	"github.com/theirongolddev/fintrack/internal/model"
	"github.com/theirongolddev/fintrack/internal/rates"

	"github.com/shopspring/decimal"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

var today = date.MustParse("2025-06-15")

func sample() Data {
	w := model.NewWallet()
	w.Initial[model.Crypto] = decimal.NewFromInt(100)
	w.Current[model.Crypto] = decimal.NewFromInt(120)
	w.Current[model.USStocks] = decimal.NewFromInt(50)

	return Data{
		Today: today,
		Subscriptions: []model.Subscription{
			{ID: "1", Name: "Gym", Value: decimal.NewFromInt(90), DueDate: "2025-06-01", Status: model.StatusOpen, IsOverdue: true,
				DelayHistory: []date.Date{date.MustParse("2025-05-01"), date.MustParse("2025-06-02")}},
			{ID: "2", Name: "Music", Value: decimal.NewFromInt(20), DueDate: "2025-07-01", Status: model.StatusOpen},
		},
		Debts: []model.Debt{
			{ID: "d", Description: "Laptop", TotalAmount: decimal.NewFromInt(500), StartDate: today,
				Payments: []model.Payment{{Amount: decimal.NewFromInt(200), Date: today}}},
		},
		Wallet: w,
		Quotes: []rates.Quote{{Source: rates.CurrencyAPI, USDPerBRL: decimal.RequireFromString("0.2"), BRLPerUSD: decimal.NewFromInt(5)}},
	}
}

// headings returns the text of every heading in src, in order.
func headings(t *testing.T, src []byte) []string {
	t.Helper()
	root := goldmark.DefaultParser().Parse(text.NewReader(src))

	var out []string
	_ = ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if h, ok := n.(*ast.Heading); ok {
			var b strings.Builder
			for c := h.FirstChild(); c != nil; c = c.NextSibling() {
				if txt, ok := c.(*ast.Text); ok {
					b.Write(txt.Segment.Value(src))
				}
			}
			out = append(out, b.String())
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	return out
}

func TestMarkdownStructure(t *testing.T) {
	md := Markdown(sample())

	got := headings(t, []byte(md))
	want := []string{"fintrack report, 15/06/2025", "Subscriptions", "Overdue", "Debts", "Wallet", "Exchange rate"}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Fatalf("headings = %q, want %q", got, want)
	}
}

func TestMarkdownContent(t *testing.T) {
	md := Markdown(sample())
	for _, s := range []string{
		"| Overdue | 1 | R$90,00 |",
		"**Gym** R$90,00, due 01/06/2025 (late 2 times)",
		"| Laptop | R$500,00 | R$200,00 | R$300,00 | N/A | 40% | normal |",
		"| Crypto | R$100,00 | R$120,00 | +R$20,00 | 20.00% |",
		"Dollar bucket is worth about $10.00.",
		"- currencyapi: 1 USD = R$ 5.0000",
	} {
		if !strings.Contains(md, s) {
			t.Errorf("report missing %q\n%s", s, md)
		}
	}
}

func TestMarkdownEmpty(t *testing.T) {
	md := Markdown(Data{Today: today, Wallet: model.NewWallet()})
	if !strings.Contains(md, "Nothing overdue.") {
		t.Fatalf("empty report:\n%s", md)
	}
	if strings.Contains(md, "Exchange rate") {
		t.Fatal("rate section without quotes")
	}
}

func TestEscapePipes(t *testing.T) {
	d := Data{Today: today, Wallet: model.NewWallet(), Debts: []model.Debt{
		{ID: "x", Description: "a|b", TotalAmount: decimal.NewFromInt(1), StartDate: today},
	}}
	if md := Markdown(d); !strings.Contains(md, `| a\|b |`) {
		t.Fatalf("pipe not escaped:\n%s", md)
	}
}

func TestRender(t *testing.T) {
	out, err := Render(Markdown(sample()), "notty", 100)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(out, "Laptop") {
		t.Fatalf("rendered output missing content:\n%s", out)
	}
}
