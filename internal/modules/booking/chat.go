// README: Alternate-channel (chat) handoff message and deep link for high-value quotes.
package booking

import (
	"fmt"
	"html"
	"net/url"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"carrental/internal/types"
)

var stripTags = bluemonday.StrictPolicy()

type ChatDetails struct {
	CarID       string
	CarName     string
	PickupPoint string
	PickupDate  string
	PickupTime  string
	ReturnPoint string
	ReturnDate  string
	ReturnTime  string
	Days        int
	AddonTitles []string
	Amount      int64
	Name        string
	Phone       string
}

// ChatMessage renders the prefilled message for the merchant's chat account.
// Customer-typed fields are stripped of markup.
func ChatMessage(d ChatDetails) string {
	addons := "-"
	if len(d.AddonTitles) > 0 {
		addons = strings.Join(d.AddonTitles, ", ")
	}
	lines := []string{
		"สวัสดีครับ ต้องการจองรถ (จองผ่านแชท)",
		fmt.Sprintf("รถ: %s (%s)", orDash(d.CarName), orDash(d.CarID)),
		strings.TrimSpace(fmt.Sprintf("รับรถ: %s %s %s", orDash(clean(d.PickupPoint)), orDash(d.PickupDate), d.PickupTime)),
		strings.TrimSpace(fmt.Sprintf("คืนรถ: %s %s %s", orDash(clean(d.ReturnPoint)), orDash(d.ReturnDate), d.ReturnTime)),
		fmt.Sprintf("จำนวนวัน: %d วัน", d.Days),
		"บริการเสริม: " + addons,
		"ยอดรวมประมาณ: " + types.FormatTHB(d.Amount),
		"ชื่อผู้จอง: " + orDash(clean(d.Name)),
		"เบอร์: " + orDash(clean(d.Phone)),
	}
	return strings.Join(lines, "\n")
}

// ChatLink appends the percent-encoded message to channelURL. A URL that
// already carries a query gets the message appended as-is.
func ChatLink(channelURL, message string) string {
	encoded := strings.ReplaceAll(url.QueryEscape(message), "+", "%20")
	if strings.Contains(channelURL, "?") {
		return channelURL + encoded
	}
	return channelURL + "?" + encoded
}

// clean drops tags; the message is plain text so entities are decoded again.
func clean(s string) string {
	return strings.TrimSpace(html.UnescapeString(stripTags.Sanitize(s)))
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
