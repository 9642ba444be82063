package cli

import (
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"

	"github.com/mmynk/splitsync/internal/models"
)

// FormatMoney formats amount in the given ISO currency, e.g. "-$20.00".
// Unknown currencies fall back to "20.00 XYZ".
func FormatMoney(amount decimal.Decimal, currency string) string {
	cur := money.GetCurrency(currency)
	if cur == nil {
		return amount.StringFixed(2) + " " + currency
	}
	minor := amount.Shift(int32(cur.Fraction)).Round(0)
	return cur.Formatter().Format(minor.IntPart())
}

// FormatShare formats a net share like FormatMoney, with a leading "+" when
// the rounded amount is positive, e.g. "+$60.00".
func FormatShare(amount decimal.Decimal, currency string) string {
	places := int32(2)
	if cur := money.GetCurrency(currency); cur != nil {
		places = int32(cur.Fraction)
	}
	formatted := FormatMoney(amount, currency)
	if amount.Round(places).IsPositive() {
		return "+" + formatted
	}
	return formatted
}

// RenderDashboard writes the text dashboard for snap.
func RenderDashboard(w io.Writer, snap models.Snapshot, shareName, currency string) error {
	p := &printer{w: w}
	fmtAmount := func(d decimal.Decimal) string { return FormatMoney(d, currency) }

	p.linef("Total expenses: %s", fmtAmount(snap.Total()))
	p.linef("Your share (%s): %s", shareName, FormatShare(snap.ShareOf(shareName), currency))

	p.section("Recent transactions")
	expenses := snap.RecentFirst()
	titles := make([]string, len(expenses))
	amounts := make([]string, len(expenses))
	for i, e := range expenses {
		titles[i] = e.Title
		amounts[i] = fmtAmount(e.Amount)
	}
	tw, aw := width(titles), width(amounts)
	for i, e := range expenses {
		p.linef("  %-*s  %*s  paid by %s", tw, titles[i], aw, amounts[i], e.PayerName())
	}
	p.none(len(expenses))

	p.section("Balances")
	names := snap.Balances.Names()
	amounts = make([]string, len(names))
	for i, name := range names {
		amounts[i] = fmtAmount(snap.Balances[name])
	}
	nw, aw := width(names), width(amounts)
	for i, name := range names {
		p.linef("  %-*s  %*s", nw, name, aw, amounts[i])
	}
	p.none(len(names))

	p.section("Suggested settlements")
	labels := make([]string, len(snap.Settlements))
	amounts = make([]string, len(snap.Settlements))
	for i, s := range snap.Settlements {
		labels[i] = s.From + " -> " + s.To
		amounts[i] = fmtAmount(s.Amount)
	}
	lw, aw := width(labels), width(amounts)
	for i := range labels {
		p.linef("  %-*s  %*s", lw, labels[i], aw, amounts[i])
	}
	p.none(len(labels))

	return p.err
}

// printer stops writing after the first error.
type printer struct {
	w   io.Writer
	err error
}

func (p *printer) linef(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format+"\n", args...)
}

func (p *printer) section(title string) {
	p.linef("")
	p.linef("%s", title)
}

func (p *printer) none(n int) {
	if n == 0 {
		p.linef("  (none)")
	}
}

func width(values []string) int {
	w := 0
	for _, v := range values {
		if n := utf8.RuneCountInString(v); n > w {
			w = n
		}
	}
	return w
}
