package types

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseQuantity(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr error
	}{
		{in: "15", want: "15.0000"},
		{in: "2.5", want: "2.5000"},
		{in: "-0.25", want: "-0.2500"},
		{in: ".75", want: "0.7500"},
		{in: "1.23456", want: "1.2345"},
		{in: "1e3", want: "1000.0000"},
		{in: "922337203685477.5807", want: "922337203685477.5807"},
		{in: "-922337203685477.5807", want: "-922337203685477.5807"},
		{in: "922337203685477.9999", wantErr: ErrQuantityRange},
		{in: "2000000000000000", wantErr: ErrQuantityRange},
		{in: "-2000000000000000", wantErr: ErrQuantityRange},
		{in: "99999999999999999999999", wantErr: ErrQuantityRange},
		{in: "1e300", wantErr: ErrQuantityRange},
		{in: "-1e300", wantErr: ErrQuantityRange},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			q, err := ParseQuantity(tt.in)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, Quantity(0), ParseQuantityOrZero(tt.in))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, q.String())
		})
	}
}

func TestParseQuantity_Malformed(t *testing.T) {
	for _, in := range []string{"", " ", "-", ".", "abc", "1.2.3", "1e999", "NaN"} {
		t.Run(in, func(t *testing.T) {
			_, err := ParseQuantity(in)
			assert.Error(t, err)
			assert.Equal(t, Quantity(0), ParseQuantityOrZero(in))
		})
	}
}

func TestQuantity_UnmarshalJSONRejectsOverflow(t *testing.T) {
	var q Quantity
	require.NoError(t, json.Unmarshal([]byte(`"3.5"`), &q))
	assert.Equal(t, NewQuantityFromInt(3)+5000, q)

	assert.ErrorIs(t, json.Unmarshal([]byte(`2000000000000000`), &q), ErrQuantityRange)
	assert.ErrorIs(t, json.Unmarshal([]byte(`1e300`), &q), ErrQuantityRange)
}

func TestQuantity_AddChecked(t *testing.T) {
	tests := []struct {
		name string
		a, b Quantity
		ok   bool
	}{
		{"plain", NewQuantityFromInt(2), NewQuantityFromInt(3), true},
		{"negative result", NewQuantityFromInt(2), NewQuantityFromInt(-3), true},
		{"upper edge", Quantity(math.MaxInt64 - 1), 1, true},
		{"overflow", Quantity(math.MaxInt64 - 1), 2, false},
		{"underflow", Quantity(math.MinInt64 + 1), -2, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sum, ok := tt.a.AddChecked(tt.b)
			assert.Equal(t, tt.ok, ok)
			if ok {
				assert.Equal(t, tt.a+tt.b, sum)
			}
		})
	}
}
