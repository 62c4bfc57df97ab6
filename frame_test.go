package dblink

import (
	"math"
	"testing"
	"time"

	"github.com/go-gota/gota/series"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeriesType(t *testing.T) {
	type Test struct {
		Name     string
		Values   []any
		Expected series.Type
	}

	testCases := []Test{
		{Name: "Integers", Values: []any{1, 2, nil}, Expected: series.Int},
		{Name: "Integers and floats", Values: []any{1, 2.5}, Expected: series.Float},
		{Name: "Booleans", Values: []any{true, nil, false}, Expected: series.Bool},
		{Name: "Booleans and numbers", Values: []any{true, 1}, Expected: series.String},
		{Name: "Strings", Values: []any{"a", 1}, Expected: series.String},
		{Name: "All NULL", Values: []any{nil, nil}, Expected: series.String},
		{Name: "Empty", Values: []any{}, Expected: series.String},
	}

	for _, tc := range testCases {
		t.Run(tc.Name, func(t *testing.T) {
			assert.Equal(t, tc.Expected, seriesType(tc.Values))
		})
	}
}

func TestFrameValue(t *testing.T) {
	ts := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	assert.Equal(t, 5, frameValue(int64(5)))
	assert.Equal(t, 7, frameValue(uint64(7)))
	assert.Equal(t, 8, frameValue(uint(8)))
	assert.Equal(t, float64(math.MaxUint64), frameValue(uint64(math.MaxUint64)))
	assert.Equal(t, 1.5, frameValue(float32(1.5)))
	assert.Equal(t, "raw", frameValue([]byte("raw")))
	assert.Equal(t, "2024-01-02T03:04:05Z", frameValue(ts))
	assert.Nil(t, frameValue(nil))
}

func TestToDataFrame(t *testing.T) {
	df, err := toDataFrame(
		[]string{"b", "a", "flag"},
		[][]any{
			{int64(1), "x", true},
			{nil, []byte("y"), false},
		},
	)
	require.NoError(t, err)

	// column order follows the query, not the alphabet
	assert.Equal(t, []string{"b", "a", "flag"}, df.Names())
	assert.Equal(t, []bool{false, true}, df.Col("b").IsNaN())
	assert.Equal(t, []string{"x", "y"}, df.Col("a").Records())
	assert.Equal(t, series.Bool, df.Col("flag").Type())
}

func TestToDataFrameColumnTypes(t *testing.T) {
	type Test struct {
		Name     string
		Values   []any
		Expected series.Type
	}

	testCases := []Test{
		{Name: "Unsigned 64-bit", Values: []any{uint64(1), nil, uint64(2)}, Expected: series.Int},
		{Name: "Unsigned", Values: []any{uint(2), uint(3)}, Expected: series.Int},
		{Name: "Unsigned 32-bit", Values: []any{uint32(4), uint32(5)}, Expected: series.Int},
		{Name: "Unsigned beyond int range", Values: []any{uint64(math.MaxUint64), uint64(1)}, Expected: series.Float},
		{Name: "Float32", Values: []any{float32(1.5), float32(2)}, Expected: series.Float},
		{Name: "Signed and unsigned", Values: []any{int64(-1), uint64(1)}, Expected: series.Int},
	}

	for _, tc := range testCases {
		t.Run(tc.Name, func(t *testing.T) {
			data := make([][]any, len(tc.Values))
			for i, v := range tc.Values {
				data[i] = []any{v}
			}

			df, err := toDataFrame([]string{"n"}, data)
			require.NoError(t, err)
			assert.Equal(t, tc.Expected, df.Col("n").Type())
			assert.Equal(t, len(tc.Values), df.Nrow())
		})
	}
}

func TestDecodeDefault(t *testing.T) {
	type Test struct {
		Name     string
		TypeName string
		Value    any
		Expected any
	}

	testCases := []Test{
		{Name: "Text bytes", TypeName: "TEXT", Value: []byte("abc"), Expected: "abc"},
		{Name: "Blob bytes", TypeName: "BLOB", Value: []byte("abc"), Expected: []byte("abc")},
		{Name: "Untyped bytes", TypeName: "", Value: []byte("abc"), Expected: []byte("abc")},
		{Name: "Integer", TypeName: "INTEGER", Value: int64(3), Expected: int64(3)},
		{Name: "NULL", TypeName: "TEXT", Value: nil, Expected: nil},
	}

	for _, tc := range testCases {
		t.Run(tc.Name, func(t *testing.T) {
			got, err := DecodeDefault(tc.TypeName, tc.Value)
			require.NoError(t, err)
			assert.Equal(t, tc.Expected, got)
		})
	}
}
