package settlement

import (
	"net/url"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/amrita-prog/Paynion-Project/pkg/money"
)

// PaymentLink builds a UPI deep link that opens the payer's UPI app with the payee and
// amount filled in:
//
//	upi://pay?pa=<upi id>&pn=<payee name>&am=<amount>&cu=INR
//
// It returns "" when the payee has no UPI id.
func PaymentLink(upiID, payeeName string, amount decimal.Decimal) string {
	if upiID == "" {
		return ""
	}
	var b strings.Builder
	b.WriteString("upi://pay?pa=")
	b.WriteString(escape(upiID))
	b.WriteString("&pn=")
	b.WriteString(escape(payeeName))
	b.WriteString("&am=")
	b.WriteString(money.Format(amount))
	b.WriteString("&cu=INR")
	return b.String()
}

// escape encodes a query value. Spaces become %20, not "+".
func escape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
