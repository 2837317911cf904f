package orders

import (
	"fmt"
	"html"
	"strings"
	"time"
)

// exportLimit caps the PDF export; the upstream renderer chokes on
// documents past a few thousand rows.
const exportLimit = 2000

func exportHTML(orders []Order) string {
	var b strings.Builder
	b.WriteString("<html><head><meta charset=\"utf-8\"><title>Commandes</title><style>")
	b.WriteString("body{font-family:sans-serif;font-size:11px}table{width:100%;border-collapse:collapse}")
	b.WriteString("th,td{border:1px solid #ccc;padding:4px;text-align:left}th{background:#eee}")
	b.WriteString("</style></head><body>")
	fmt.Fprintf(&b, "<h1>Commandes</h1><p>Export du %s</p>", time.Now().Format("02/01/2006 15:04"))
	b.WriteString("<table><tr><th>#</th><th>Campagne</th><th>Client</th><th>Pays</th><th>Statut</th><th>Total</th><th>Date</th></tr>")
	for _, o := range orders {
		fmt.Fprintf(&b, "<tr><td>%d</td><td>%d</td><td>%s (%s)</td><td>%s</td><td>%s</td><td>%.2f</td><td>%s</td></tr>",
			o.ID,
			o.CampaignID,
			html.EscapeString(o.CustomerName),
			html.EscapeString(o.CustomerNumber),
			html.EscapeString(o.Country),
			html.EscapeString(o.Status),
			o.TotalAmount,
			o.CreatedAt.Format("02/01/2006"))
	}
	b.WriteString("</table></body></html>")
	return b.String()
}
