package tigo

import (
	"encoding/csv"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/morikuni/failure/v2"
	"github.com/samber/lo"
)

// timeLayout is the timestamp format used by the data endpoints.
const timeLayout = "2006-01-02 15:04:05"

// Level selects the granularity of the time-series endpoints.
type Level string

const (
	LevelMinute Level = "minute"
	LevelHour   Level = "hour"
	LevelDay    Level = "day"
)

// ParseLevel validates a user-supplied granularity token.
func ParseLevel(s string) (Level, error) {
	switch Level(s) {
	case LevelMinute, LevelHour, LevelDay:
		return Level(s), nil
	}
	return "", failure.New(ErrInvalidLevel,
		failure.Message("Level must be 'minute', 'hour', or 'day'"),
		failure.Context{"level": s},
	)
}

// Row is a single timestamped sample of a DataSet.
type Row struct {
	Time   time.Time
	Values []float64
}

// DataSet holds time-series data parsed from a CSV response. Columns
// carries the value column names; the timestamp column is folded into
// Row.Time. Missing cells are NaN.
type DataSet struct {
	Columns []string
	Rows    []Row
}

// ParseDataSet reads the CSV table emitted by the aggregate and
// combined data endpoints.
func ParseDataSet(r io.Reader) (*DataSet, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return &DataSet{}, nil
	}
	if err != nil {
		return nil, failure.Wrap(err)
	}
	if len(header) < 2 {
		return nil, failure.New(ErrMalformedData,
			failure.Message("CSV payload has no value columns"),
			failure.Context{"header": strings.Join(header, ",")},
		)
	}

	ds := &DataSet{Columns: header[1:]}
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, failure.Wrap(err)
		}
		if len(rec) == 0 {
			continue
		}
		ts, err := time.Parse(timeLayout, strings.TrimSpace(rec[0]))
		if err != nil {
			// Data endpoints append notice lines after the table
			continue
		}

		row := Row{Time: ts, Values: make([]float64, len(ds.Columns))}
		for i := range ds.Columns {
			row.Values[i] = math.NaN()
			if i+1 < len(rec) {
				if v, err := strconv.ParseFloat(strings.TrimSpace(rec[i+1]), 64); err == nil {
					row.Values[i] = v
				}
			}
		}
		ds.Rows = append(ds.Rows, row)
	}

	return ds, nil
}

// Empty reports whether the set holds no samples.
func (d *DataSet) Empty() bool {
	return d == nil || len(d.Rows) == 0
}

// Len returns the number of samples.
func (d *DataSet) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Rows)
}

// Start returns the earliest sample time, zero when empty.
func (d *DataSet) Start() time.Time {
	if d.Empty() {
		return time.Time{}
	}
	return d.Rows[0].Time
}

// End returns the latest sample time, zero when empty.
func (d *DataSet) End() time.Time {
	if d.Empty() {
		return time.Time{}
	}
	return d.Rows[len(d.Rows)-1].Time
}

// column returns the non-NaN samples of column i.
func (d *DataSet) column(i int) []float64 {
	if d.Empty() || i < 0 || i >= len(d.Columns) {
		return nil
	}
	vals := make([]float64, 0, len(d.Rows))
	for _, row := range d.Rows {
		if v := row.Values[i]; !math.IsNaN(v) {
			vals = append(vals, v)
		}
	}
	return vals
}

// ColumnTotal sums column i, skipping missing cells.
func (d *DataSet) ColumnTotal(i int) float64 {
	return lo.Sum(d.column(i))
}

// ColumnMean averages column i, skipping missing cells.
func (d *DataSet) ColumnMean(i int) float64 {
	vals := d.column(i)
	if len(vals) == 0 {
		return 0
	}
	return lo.Sum(vals) / float64(len(vals))
}

// ColumnMax returns the largest sample of column i, zero when the
// column holds no samples.
func (d *DataSet) ColumnMax(i int) float64 {
	vals := d.column(i)
	if len(vals) == 0 {
		return 0
	}
	return lo.Max(vals)
}

// Head returns the first n samples as column-keyed records.
func (d *DataSet) Head(n int) []map[string]float64 {
	if d.Empty() {
		return []map[string]float64{}
	}
	n = lo.Clamp(n, 0, len(d.Rows))
	return d.records(d.Rows[:n])
}

// Tail returns the last n samples as column-keyed records.
func (d *DataSet) Tail(n int) []map[string]float64 {
	if d.Empty() {
		return []map[string]float64{}
	}
	n = lo.Clamp(n, 0, len(d.Rows))
	return d.records(d.Rows[len(d.Rows)-n:])
}

func (d *DataSet) records(rows []Row) []map[string]float64 {
	out := make([]map[string]float64, 0, len(rows))
	for _, row := range rows {
		rec := make(map[string]float64, len(d.Columns))
		for i, name := range d.Columns {
			if v := row.Values[i]; !math.IsNaN(v) {
				rec[name] = v
			}
		}
		out = append(out, rec)
	}
	return out
}
