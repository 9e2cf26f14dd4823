package exporter

import (
	"fmt"
	"io"
	"text/tabwriter"

	"featurelab/pkg/contracts/domain"
)

// WriteInfo prints a column summary in the layout of a dataframe info
// listing: one line per column with its non-null count and type.
func WriteInfo(w io.Writer, info domain.TableInfo) error {
	if _, err := fmt.Fprintf(w, "%d entries, %d columns\n", info.Rows, len(info.Columns)); err != nil {
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, " #\tColumn\tNon-Null Count\tDtype")
	for i, c := range info.Columns {
		fmt.Fprintf(tw, " %d\t%s\t%d non-null\t%s\n", i, c.Name, c.NonNull, c.Type)
	}
	return tw.Flush()
}
