package codec

import "strings"

// splitRow decides the delimiter for a single row: tab when the line contains
// at least one, comma otherwise. The per-line decision tolerates files whose
// rows come from mixed origins (spreadsheet re-saves flip tabs to commas),
// at the cost of mis-splitting a comma inside a name in a tab-free row.
// Field mapping never touches delimiters, so a stricter parser can be swapped
// in here alone.
func splitRow(line string) []string {
	sep := ","
	if strings.Contains(line, "\t") {
		sep = "\t"
	}

	fields := strings.Split(line, sep)
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}
	return fields
}
