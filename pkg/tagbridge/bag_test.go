package tagbridge

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBagItems(t *testing.T) {
	testCases := []struct {
		name    string
		value   any
		wantLen int
		wantOK  bool
	}{
		{"typed slice", []map[string]any{{"a": 1}, {"b": 2}}, 2, true},
		{"bag slice", []Bag{{"a": 1}}, 1, true},
		{"decoded json array", []any{map[string]any{"a": 1}}, 1, true},
		{"empty array", []any{}, 0, true},
		{"mixed array", []any{map[string]any{"a": 1}, "x"}, 0, false},
		{"not a sequence", "items", 0, false},
		{"absent", nil, 0, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			b := Bag{}
			if tc.value != nil {
				b["items"] = tc.value
			}
			got, ok := b.Items("items")
			assert.Equal(t, tc.wantOK, ok)
			assert.Len(t, got, tc.wantLen)
		})
	}
}

func TestCoercePrice(t *testing.T) {
	testCases := []struct {
		name string
		in   any
		want float64
	}{
		{"float", 19.99, 19.99},
		{"float32", float32(2.5), 2.5},
		{"int", 20, 20},
		{"int64", int64(50000), 50000},
		{"numeric string", "19.99", 0},
		{"bool", true, 0},
		{"absent", nil, 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, coercePrice(tc.in))
		})
	}
}

func TestCoerceQuantity(t *testing.T) {
	testCases := []struct {
		name string
		in   any
		want int
	}{
		{"int", 3, 3},
		{"int64", int64(4), 4},
		{"float truncated", 2.9, 2},
		{"numeric string", "2", 1},
		{"absent", nil, 1},
		{"float above int range", 1e30, 1},
		{"float below int range", -1e30, 1},
		{"nan", math.NaN(), 1},
		{"positive infinity", math.Inf(1), 1},
		{"uint64 above int64 range", uint64(math.MaxUint64), 1},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, coerceQuantity(tc.in))
		})
	}
}

func TestAsIntRejectsOverflowingUnsigned(t *testing.T) {
	_, ok := asInt(uint64(math.MaxInt64) + 1)
	assert.False(t, ok)

	n, ok := asInt(uint64(math.MaxInt64))
	assert.True(t, ok)
	assert.Equal(t, int64(math.MaxInt64), n)
}

func TestBagWithoutDoesNotMutate(t *testing.T) {
	b := Bag{"a": 1, "b": 2}
	out := b.Without("a")
	assert.Equal(t, Bag{"b": 2}, out)
	assert.Equal(t, Bag{"a": 1, "b": 2}, b)
}

func TestBagDescribe(t *testing.T) {
	b := Bag{"z": "s", "a": int64(1)}
	assert.Equal(t, "a=1 (int64), z=s (string)", b.Describe())
}

func TestParseAuthorizationStatus(t *testing.T) {
	assert.Equal(t, AuthorizationAuthorized, ParseAuthorizationStatus(" Authorized "))
	assert.Equal(t, AuthorizationProvisional, ParseAuthorizationStatus("provisional"))
	assert.Equal(t, AuthorizationNotDetermined, ParseAuthorizationStatus("granted"))
	assert.True(t, AuthorizationProvisional.Granted())
	assert.False(t, AuthorizationEphemeral.Granted())
}
