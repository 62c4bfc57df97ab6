package dblink

import (
	"fmt"
	"math"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// toDataFrame builds a dataframe column by column so the result keeps the
// query's column order.
func toDataFrame(columns []string, data [][]any) (dataframe.DataFrame, error) {
	cols := make([]series.Series, len(columns))
	for i, name := range columns {
		values := make([]any, len(data))
		for j, row := range data {
			values[j] = frameValue(row[i])
		}

		typ := seriesType(values)
		if typ == series.String {
			for j, v := range values {
				if v != nil {
					values[j] = fmt.Sprint(v)
				}
			}
		}

		cols[i] = series.New(values, typ, name)
		if cols[i].Err != nil {
			return dataframe.DataFrame{}, fmt.Errorf("build series %v: %w", name, cols[i].Err)
		}
	}

	df := dataframe.New(cols...)
	if df.Err != nil {
		return df, fmt.Errorf("build dataframe: %w", df.Err)
	}
	return df, nil
}

// frameValue narrows a decoded value to the element types gota understands.
// NULL stays nil and becomes a NaN element.
func frameValue(v any) any {
	switch val := v.(type) {
	case nil, string, int, float64, bool:
		return val
	case int64:
		return int(val)
	case int32:
		return int(val)
	case int16:
		return int(val)
	case int8:
		return int(val)
	case uint64:
		if val > math.MaxInt {
			return float64(val)
		}
		return int(val)
	case uint:
		if val > math.MaxInt {
			return float64(val)
		}
		return int(val)
	case uint32:
		return int(val)
	case uint16:
		return int(val)
	case uint8:
		return int(val)
	case float32:
		return float64(val)
	case []byte:
		return string(val)
	case time.Time:
		return val.Format(time.RFC3339Nano)
	default:
		return fmt.Sprint(val)
	}
}

// seriesType infers the series type from the non-nil values of a column.
func seriesType(values []any) series.Type {
	var ints, floats, bools, others int
	for _, v := range values {
		switch v.(type) {
		case nil:
		case int:
			ints++
		case float64:
			floats++
		case bool:
			bools++
		default:
			others++
		}
	}

	switch {
	case others > 0:
		return series.String
	case bools > 0 && ints+floats == 0:
		return series.Bool
	case bools > 0:
		return series.String
	case floats > 0:
		return series.Float
	case ints > 0:
		return series.Int
	default:
		return series.String
	}
}
