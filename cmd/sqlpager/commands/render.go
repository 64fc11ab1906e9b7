package commands

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/Alp4ka/sqlpager"
	"github.com/samber/lo"
)

const rowNumberHeader = "#"

// renderPage writes page as an aligned table with the global row number in
// the first column.
func renderPage(w io.Writer, page *sqlpager.Page) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	header := append([]string{rowNumberHeader}, page.Headers...)
	fmt.Fprintln(tw, strings.Join(header, "\t"))

	for _, row := range page.Rows {
		cells := append([]string{strconv.Itoa(row.Number)}, lo.Map(row.Row, formatValue)...)
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}

	return tw.Flush()
}

func formatValue(v any, _ int) string {
	switch value := v.(type) {
	case nil:
		return "NULL"
	case []byte:
		return string(value)
	case time.Time:
		return value.Format(time.RFC3339)
	default:
		return fmt.Sprint(value)
	}
}
