package tagbridge

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"
)

var (
	iso639Pattern  = regexp.MustCompile(`^[a-z]{2}$`)
	iso3166Pattern = regexp.MustCompile(`^[A-Z]{2}$`)
	e164Pattern    = regexp.MustCompile(`^\+[1-9]\d{1,14}$`)
	emailPattern   = regexp.MustCompile(`^[A-Z0-9a-z._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,64}$`)
	dobPattern     = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
)

const dobLayout = "2006-01-02"

// attributeSetter validates, normalizes and applies one recognized key.
type attributeSetter func(b *Bridge, key string, value any) error

// attributeSetters is keyed by the exact attribute name. Keys not listed here
// are generic custom attributes.
var attributeSetters = map[string]attributeSetter{
	"gender":        setGender,
	"firstName":     nonEmptyString(AttrFirstName),
	"first_name":    nonEmptyString(AttrFirstName),
	"lastName":      nonEmptyString(AttrLastName),
	"last_name":     nonEmptyString(AttrLastName),
	"language":      setLanguage,
	"email":         setEmail,
	"dateOfBirth":   setDateOfBirth,
	"date_of_birth": setDateOfBirth,
	"dob":           setDateOfBirth,
	"country":       setCountry,
	"homeCity":      nonEmptyString(AttrHomeCity),
	"home_city":     nonEmptyString(AttrHomeCity),
	"city":          nonEmptyString(AttrHomeCity),
	"phoneNumber":   setPhoneNumber,
	"phone_number":  setPhoneNumber,
	"phone":         setPhoneNumber,
}

var genderSynonyms = map[string]Gender{
	"male":              GenderMale,
	"m":                 GenderMale,
	"pria":              GenderMale,
	"laki-laki":         GenderMale,
	"female":            GenderFemale,
	"f":                 GenderFemale,
	"perempuan":         GenderFemale,
	"other":             GenderOther,
	"o":                 GenderOther,
	"unknown":           GenderUnknown,
	"not_applicable":    GenderUnknown,
	"prefer_not_to_say": GenderPreferNotToSay,
	"prefernottosay":    GenderPreferNotToSay,
}

// ParseGender lowercases s and looks it up in the synonym table. Unmatched
// input yields PreferNotToSay together with an ErrUnrecognizedValue.
func ParseGender(s string) (Gender, error) {
	if g, ok := genderSynonyms[strings.ToLower(s)]; ok {
		return g, nil
	}
	return GenderPreferNotToSay, fmt.Errorf("gender %q, defaulting to %s: %w", s, GenderPreferNotToSay, ErrUnrecognizedValue)
}

func (b *Bridge) setAttribute(_ context.Context, params Bag) error {
	key, ok := params.String(KeyCustomAttributeKey)
	if !ok {
		key, ok = params.String(KeyAttributeKey)
	}
	if !ok {
		return fmt.Errorf("attribute key: %w", ErrMissingField)
	}
	value, present := params[KeyCustomAttributeValue]
	if !present || value == nil {
		value = params[KeyAttributeValue]
	}

	if set, recognized := attributeSetters[key]; recognized {
		return set(b, key, value)
	}
	return setCustomAttribute(b, key, value)
}

func stringValue(key string, value any) (string, error) {
	s, ok := value.(string)
	if !ok {
		return "", fmt.Errorf("%s: want string, got %T: %w", key, value, ErrTypeMismatch)
	}
	return s, nil
}

func setGender(b *Bridge, key string, value any) error {
	s, err := stringValue(key, value)
	if err != nil {
		return err
	}
	g, err := ParseGender(s)
	if err != nil {
		b.warn(err)
	}
	b.sink.SetUserAttribute(AttrGender, g)
	b.logger.Printf("tagbridge: gender set to %s", g)
	return nil
}

func nonEmptyString(attr UserAttribute) attributeSetter {
	return func(b *Bridge, key string, value any) error {
		s, err := stringValue(key, value)
		if err != nil {
			return err
		}
		if s == "" {
			return fmt.Errorf("%s is empty: %w", key, ErrMissingField)
		}
		b.sink.SetUserAttribute(attr, s)
		b.logger.Printf("tagbridge: %s set to %q", attr, s)
		return nil
	}
}

// setLanguage applies the lowercased value even when it is not ISO-639-1.
func setLanguage(b *Bridge, key string, value any) error {
	s, err := stringValue(key, value)
	if err != nil {
		return err
	}
	lang := strings.ToLower(s)
	if !iso639Pattern.MatchString(lang) {
		b.warn(fmt.Errorf("language %q is not an ISO-639-1 code, applying %q: %w", s, lang, ErrFormatInvalid))
	}
	b.sink.SetUserAttribute(AttrLanguage, lang)
	b.logger.Printf("tagbridge: language set to %q", lang)
	return nil
}

// setEmail only applies addresses that pass the format check.
func setEmail(b *Bridge, key string, value any) error {
	s, err := stringValue(key, value)
	if err != nil {
		return err
	}
	if !emailPattern.MatchString(s) {
		return fmt.Errorf("email %q: %w", s, ErrFormatInvalid)
	}
	b.sink.SetUserAttribute(AttrEmail, s)
	b.logger.Printf("tagbridge: email set to %q", s)
	return nil
}

// setDateOfBirth requires YYYY-MM-DD naming a real calendar day.
func setDateOfBirth(b *Bridge, key string, value any) error {
	s, err := stringValue(key, value)
	if err != nil {
		return err
	}
	if !dobPattern.MatchString(s) {
		return fmt.Errorf("date of birth %q must be YYYY-MM-DD: %w", s, ErrFormatInvalid)
	}
	dob, err := time.Parse(dobLayout, s)
	if err != nil {
		return fmt.Errorf("date of birth %q: %v: %w", s, err, ErrFormatInvalid)
	}
	b.sink.SetUserAttribute(AttrDateOfBirth, dob)
	b.logger.Printf("tagbridge: date of birth set to %s", dob.Format(dobLayout))
	return nil
}

// setCountry applies the uppercased value even when it is not ISO-3166-1 alpha-2.
func setCountry(b *Bridge, key string, value any) error {
	s, err := stringValue(key, value)
	if err != nil {
		return err
	}
	country := strings.ToUpper(s)
	if !iso3166Pattern.MatchString(country) {
		b.warn(fmt.Errorf("country %q is not an ISO-3166-1 alpha-2 code, applying %q: %w", s, country, ErrFormatInvalid))
	}
	b.sink.SetUserAttribute(AttrCountry, country)
	b.logger.Printf("tagbridge: country set to %q", country)
	return nil
}

// setPhoneNumber applies the value even when it is not E.164.
func setPhoneNumber(b *Bridge, key string, value any) error {
	s, err := stringValue(key, value)
	if err != nil {
		return err
	}
	if !e164Pattern.MatchString(s) {
		b.warn(fmt.Errorf("phone %q is not E.164, SMS delivery may fail: %w", s, ErrFormatInvalid))
	}
	b.sink.SetUserAttribute(AttrPhoneNumber, s)
	b.logger.Printf("tagbridge: phone number set to %q", s)
	return nil
}

// setCustomAttribute dispatches on the runtime type of value. Unsupported
// types are dropped.
func setCustomAttribute(b *Bridge, key string, value any) error {
	var typed any
	switch v := value.(type) {
	case string, bool, time.Time:
		typed = v
	default:
		if n, ok := asInt(value); ok {
			typed = n
		} else if f, ok := asFloat(value); ok {
			typed = f
		} else {
			return fmt.Errorf("custom attribute %q: unsupported type %T: %w", key, value, ErrTypeMismatch)
		}
	}
	b.sink.SetCustomAttribute(key, typed)
	b.logger.Printf("tagbridge: custom attribute %s=%v (%T)", key, typed, typed)
	return nil
}
