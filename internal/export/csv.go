package export

import (
	"bufio"
	"io"
	"strconv"
	"strings"
)

// WriteCSV writes rows as "day,raw,total". The raw column is always quoted
// with inner quotes doubled.
func WriteCSV(w io.Writer, rows []Row) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(strings.Join(Header, ",") + "\n"); err != nil {
		return err
	}
	for _, r := range rows {
		line := strconv.Itoa(r.Day) + "," + quote(r.Raw) + "," + strconv.FormatInt(r.Total, 10) + "\n"
		if _, err := bw.WriteString(line); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
