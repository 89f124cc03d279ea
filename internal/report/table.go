package report

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/roach88/placer/internal/profile"
)

// WriteAnalysisTable writes one row per field, sorted by frequency (highest
// first), preceded by the profiler totals.
func WriteAnalysisTable(w io.Writer, s profile.Summary) error {
	ew := &errWriter{w: w}
	ew.printf("Records analyzed:  %d\n", s.RecordsAnalyzed)
	ew.printf("Fields discovered: %d\n", s.FieldsDiscovered)
	ew.printf("Nested fields:     %d\n", s.NestedFields)
	ew.printf("Array fields:      %d\n\n", s.ArrayFields)
	if ew.err != nil {
		return ew.err
	}

	fields := append([]profile.FieldAnalysis(nil), s.Fields...)
	sort.SliceStable(fields, func(i, j int) bool {
		if fields[i].Frequency != fields[j].Frequency {
			return fields[i].Frequency > fields[j].Frequency
		}
		return fields[i].FieldName < fields[j].FieldName
	})

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "FIELD\tFREQ\tCOUNT\tTYPE\tSTABILITY\tCARD\tUNIQUES\tPATTERN\tFLAGS")
	for _, a := range fields {
		uniques := fmt.Sprintf("%d", a.UniqueValueCount)
		if a.UniqueSaturated {
			uniques += "+"
		}
		pattern := a.DominantPattern
		if pattern == profile.PatternNone {
			pattern = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\t%.3f\t%s\t%s\t%s\n",
			a.FieldName, percent(a.Frequency), a.TotalOccurrences, a.DominantType,
			percent(a.TypeStability), a.Cardinality, uniques, pattern, flags(a))
	}
	return tw.Flush()
}

func flags(a profile.FieldAnalysis) string {
	var out []string
	if a.IsNested {
		out = append(out, "nested")
	}
	if a.IsArray {
		out = append(out, "array")
	}
	if len(out) == 0 {
		return "-"
	}
	return strings.Join(out, ",")
}
