package terrain

import (
	"encoding/csv"
	"io"
	"strconv"
)

// diagnostics writes decoded rows as CSV. The first write error disables
// further output; it never reaches the caller.
type diagnostics struct {
	w      *csv.Writer
	record []string
	failed bool
}

func newDiagnostics(w io.Writer) *diagnostics {
	if w == nil {
		return &diagnostics{failed: true}
	}
	return &diagnostics{w: csv.NewWriter(w)}
}

func (d *diagnostics) writeRow(row []float32) {
	if d.failed {
		return
	}
	d.record = formatRow(d.record[:0], row)
	if err := d.w.Write(d.record); err != nil {
		d.failed = true
		return
	}
	d.w.Flush()
	if d.w.Error() != nil {
		d.failed = true
	}
}

func (d *diagnostics) flush() {
	if d.failed {
		return
	}
	d.w.Flush()
}

func formatRow(dst []string, row []float32) []string {
	for _, v := range row {
		dst = append(dst, strconv.FormatFloat(float64(v), 'f', -1, 32))
	}
	return dst
}

// WriteCSV writes the heightmap rows, south first, as CSV.
func (h *Heightmap) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	record := make([]string, 0, h.width)
	for y := range h.height {
		record = formatRow(record[:0], h.values[y*h.width:(y+1)*h.width])
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
