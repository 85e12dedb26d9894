package tagbridge

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseGender(t *testing.T) {
	testCases := []struct {
		in      string
		want    Gender
		wantErr bool
	}{
		{"male", GenderMale, false},
		{"M", GenderMale, false},
		{"Pria", GenderMale, false},
		{"laki-laki", GenderMale, false},
		{"Female", GenderFemale, false},
		{"perempuan", GenderFemale, false},
		{"o", GenderOther, false},
		{"not_applicable", GenderUnknown, false},
		{"PreferNotToSay", GenderPreferNotToSay, false},
		{"xyz", GenderPreferNotToSay, true},
	}

	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseGender(tc.in)
			assert.Equal(t, tc.want, got)
			if tc.wantErr {
				assert.ErrorIs(t, err, ErrUnrecognizedValue)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSetAttribute(t *testing.T) {
	dob := time.Date(2012, 12, 12, 0, 0, 0, 0, time.UTC)

	testCases := []struct {
		name      string
		key       string
		value     any
		want      *Call
		wantWarn  string
		wantDrop  string
		useLegacy bool
	}{
		{name: "gender synonym", key: "gender", value: "Pria",
			want: &Call{Kind: CallSetUserAttribute, Attribute: AttrGender, Value: GenderMale}},
		{name: "gender default", key: "gender", value: "xyz",
			want: &Call{Kind: CallSetUserAttribute, Attribute: AttrGender, Value: GenderPreferNotToSay}, wantWarn: "unrecognized_value"},
		{name: "gender wrong type", key: "gender", value: int64(1), wantDrop: "type_mismatch"},

		{name: "first name", key: "first_name", value: "Scott",
			want: &Call{Kind: CallSetUserAttribute, Attribute: AttrFirstName, Value: "Scott"}},
		{name: "first name empty", key: "firstName", value: "", wantDrop: "missing_field"},
		{name: "last name", key: "lastName", value: "Pilgrim", useLegacy: true,
			want: &Call{Kind: CallSetUserAttribute, Attribute: AttrLastName, Value: "Pilgrim"}},

		{name: "language lowercased", key: "language", value: "EN",
			want: &Call{Kind: CallSetUserAttribute, Attribute: AttrLanguage, Value: "en"}},
		{name: "language invalid still applied", key: "language", value: "English",
			want: &Call{Kind: CallSetUserAttribute, Attribute: AttrLanguage, Value: "english"}, wantWarn: "format_invalid"},

		{name: "email valid", key: "email", value: "a@b.co",
			want: &Call{Kind: CallSetUserAttribute, Attribute: AttrEmail, Value: "a@b.co"}},
		{name: "email invalid dropped", key: "email", value: "not-an-email", wantDrop: "format_invalid"},
		{name: "email with trailing junk dropped", key: "email", value: "a@b.co x", wantDrop: "format_invalid"},

		{name: "dob", key: "dob", value: "2012-12-12",
			want: &Call{Kind: CallSetUserAttribute, Attribute: AttrDateOfBirth, Value: dob}},
		{name: "dob camel key", key: "dateOfBirth", value: "2012-12-12",
			want: &Call{Kind: CallSetUserAttribute, Attribute: AttrDateOfBirth, Value: dob}},
		{name: "dob wrong format", key: "date_of_birth", value: "12/12/2012", wantDrop: "format_invalid"},
		{name: "dob impossible day", key: "date_of_birth", value: "2024-02-30", wantDrop: "format_invalid"},

		{name: "country uppercased", key: "country", value: "id",
			want: &Call{Kind: CallSetUserAttribute, Attribute: AttrCountry, Value: "ID"}},
		{name: "country invalid still applied", key: "country", value: "Indonesia",
			want: &Call{Kind: CallSetUserAttribute, Attribute: AttrCountry, Value: "INDONESIA"}, wantWarn: "format_invalid"},

		{name: "city alias", key: "city", value: "Jakarta",
			want: &Call{Kind: CallSetUserAttribute, Attribute: AttrHomeCity, Value: "Jakarta"}},
		{name: "home city empty", key: "home_city", value: "", wantDrop: "missing_field"},

		{name: "phone e164", key: "phone", value: "+6281234567890",
			want: &Call{Kind: CallSetUserAttribute, Attribute: AttrPhoneNumber, Value: "+6281234567890"}},
		{name: "phone invalid still applied", key: "phoneNumber", value: "081234",
			want: &Call{Kind: CallSetUserAttribute, Attribute: AttrPhoneNumber, Value: "081234"}, wantWarn: "format_invalid"},
		{name: "phone leading zero country code", key: "phone_number", value: "+0123",
			want: &Call{Kind: CallSetUserAttribute, Attribute: AttrPhoneNumber, Value: "+0123"}, wantWarn: "format_invalid"},

		{name: "custom string", key: "tier", value: "gold",
			want: &Call{Kind: CallSetCustomAttribute, Key: "tier", Value: "gold"}},
		{name: "custom int", key: "visits", value: 7,
			want: &Call{Kind: CallSetCustomAttribute, Key: "visits", Value: int64(7)}},
		{name: "custom float", key: "score", value: 0.5,
			want: &Call{Kind: CallSetCustomAttribute, Key: "score", Value: 0.5}},
		{name: "custom bool", key: "vip", value: true,
			want: &Call{Kind: CallSetCustomAttribute, Key: "vip", Value: true}},
		{name: "custom date", key: "joined", value: dob,
			want: &Call{Kind: CallSetCustomAttribute, Key: "joined", Value: dob}},
		{name: "custom unsupported type", key: "tags", value: []any{"a"}, wantDrop: "type_mismatch"},
		{name: "keys are case-sensitive", key: "Email", value: "not-an-email",
			want: &Call{Kind: CallSetCustomAttribute, Key: "Email", Value: "not-an-email"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			b, rec, obs := newTestBridge(t, nil)
			params := Bag{"actionType": "customAttribute", "customAttributeKey": tc.key, "customAttributeValue": tc.value}
			if tc.useLegacy {
				params = Bag{"actionType": "userAttribute", "attributeKey": tc.key, "attributeValue": tc.value}
			}
			require.True(t, b.Execute(context.Background(), params))

			calls := rec.emitted()
			if tc.want == nil {
				assert.Empty(t, calls)
			} else {
				require.Len(t, calls, 1)
				assert.Equal(t, *tc.want, calls[0])
			}
			assert.Zero(t, rec.flushes(), "attribute setters never flush")

			if tc.wantWarn != "" {
				assert.Equal(t, []string{tc.wantWarn}, obs.warned)
			} else {
				assert.Empty(t, obs.warned)
			}
			if tc.wantDrop != "" {
				assert.Equal(t, []string{tc.wantDrop}, obs.discarded)
			} else {
				assert.Empty(t, obs.discarded)
			}
		})
	}
}

func TestSetAttributeKeyResolution(t *testing.T) {
	t.Run("missing key", func(t *testing.T) {
		b, rec, obs := newTestBridge(t, nil)
		b.Execute(context.Background(), Bag{"actionType": "userAttribute", "attributeValue": "x"})
		assert.Empty(t, rec.calls)
		assert.Equal(t, []string{"missing_field"}, obs.discarded)
	})

	t.Run("custom key preferred over generic key", func(t *testing.T) {
		b, rec, _ := newTestBridge(t, nil)
		b.Execute(context.Background(), Bag{
			"actionType":           "customAttribute",
			"customAttributeKey":   "tier",
			"attributeKey":         "ignored",
			"customAttributeValue": "gold",
			"attributeValue":       "silver",
		})
		calls := rec.emitted()
		require.Len(t, calls, 1)
		assert.Equal(t, "tier", calls[0].Key)
		assert.Equal(t, "gold", calls[0].Value)
	})

	t.Run("value falls back to generic value key", func(t *testing.T) {
		b, rec, _ := newTestBridge(t, nil)
		b.Execute(context.Background(), Bag{"actionType": "customAttribute", "customAttributeKey": "tier", "attributeValue": "silver"})
		calls := rec.emitted()
		require.Len(t, calls, 1)
		assert.Equal(t, "silver", calls[0].Value)
	})
}
