package brcode

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Field tags of the merchant-presented BR Code payload.
const (
	TagPayloadFormat        = "00"
	TagMerchantAccount      = "26"
	TagMerchantCategoryCode = "52"
	TagCurrency             = "53"
	TagAmount               = "54"
	TagCountryCode          = "58"
	TagMerchantName         = "59"
	TagMerchantCity         = "60"
	TagAdditionalData       = "62"
	TagCRC                  = "63"

	tagGUI         = "00"
	tagKey         = "01"
	tagReferenceID = "05"

	payloadFormatVersion = "01"
	crcPrefix            = TagCRC + "04"

	MaxNameLength      = 25
	MaxCityLength      = 15
	MaxReferenceLength = 25

	// EmptyReference is sent when a payment carries no reference id.
	EmptyReference = "***"
)

var (
	ErrInvalidKey     = errors.New("brcode: invalid recipient key")
	ErrInvalidAmount  = errors.New("brcode: amount must be positive")
	ErrInvalidOptions = errors.New("brcode: invalid encoder options")
)

// Options holds the scheme constants stamped on every payload.
type Options struct {
	GUI                  string
	MerchantCategoryCode string
	CurrencyCode         string
	CountryCode          string
}

// DefaultOptions returns the PIX scheme values for Brazil.
func DefaultOptions() Options {
	return Options{
		GUI:                  "br.gov.bcb.pix",
		MerchantCategoryCode: "0000",
		CurrencyCode:         "986",
		CountryCode:          "BR",
	}
}

func (o Options) validate() error {
	switch {
	case o.GUI == "" || !isPrintableASCII(o.GUI):
		return fmt.Errorf("%w: gui %q", ErrInvalidOptions, o.GUI)
	case len(o.MerchantCategoryCode) != 4 || !allDigits(o.MerchantCategoryCode):
		return fmt.Errorf("%w: merchant category code %q", ErrInvalidOptions, o.MerchantCategoryCode)
	case len(o.CurrencyCode) != 3 || !allDigits(o.CurrencyCode):
		return fmt.Errorf("%w: currency code %q", ErrInvalidOptions, o.CurrencyCode)
	case len(o.CountryCode) != 2 || !allUpper(o.CountryCode):
		return fmt.Errorf("%w: country code %q", ErrInvalidOptions, o.CountryCode)
	}
	return nil
}

// Payload carries the business fields of one payment code.
type Payload struct {
	Key         string
	Name        string
	City        string
	Amount      decimal.Decimal
	ReferenceID string
}

// Encoder assembles static BR Code payloads.
type Encoder struct {
	opts   Options
	maxKey int
}

func NewEncoder(opts Options) (*Encoder, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	// "00" + len + gui, then "01" + len + key, all inside a 99 byte template.
	maxKey := maxValueLength - (4 + len(opts.GUI)) - 4
	if maxKey <= 0 {
		return nil, fmt.Errorf("%w: gui too long", ErrInvalidOptions)
	}
	return &Encoder{opts: opts, maxKey: maxKey}, nil
}

// MaxKeyLength is the longest recipient key that fits the merchant account template.
func (e *Encoder) MaxKeyLength() int { return e.maxKey }

// ValidateKey reports whether key can be encoded.
func (e *Encoder) ValidateKey(key string) error {
	if key == "" {
		return fmt.Errorf("%w: empty", ErrInvalidKey)
	}
	if len(key) > e.maxKey {
		return fmt.Errorf("%w: %d characters, max %d", ErrInvalidKey, len(key), e.maxKey)
	}
	if !isPrintableASCII(key) {
		return fmt.Errorf("%w: non printable characters", ErrInvalidKey)
	}
	return nil
}

// FormatAmount renders amount with exactly two fraction digits, rounding
// half away from zero.
func FormatAmount(amount decimal.Decimal) string {
	return amount.StringFixed(2)
}

// Encode builds the full payload, CRC included.
func (e *Encoder) Encode(p Payload) (string, error) {
	if err := e.ValidateKey(p.Key); err != nil {
		return "", err
	}
	if !p.Amount.Round(2).IsPositive() {
		return "", fmt.Errorf("%w: %s", ErrInvalidAmount, p.Amount.String())
	}

	ref := NormalizeReference(p.ReferenceID)
	if len(ref) > MaxReferenceLength {
		ref = ref[:MaxReferenceLength]
	}
	if ref == "" {
		ref = EmptyReference
	}

	w := &fieldWriter{}
	w.field(TagPayloadFormat, payloadFormatVersion)
	w.field(TagMerchantAccount, w.nested(
		tlvPair{tagGUI, e.opts.GUI},
		tlvPair{tagKey, p.Key},
	))
	w.field(TagMerchantCategoryCode, e.opts.MerchantCategoryCode)
	w.field(TagCurrency, e.opts.CurrencyCode)
	w.field(TagAmount, FormatAmount(p.Amount))
	w.field(TagCountryCode, e.opts.CountryCode)
	w.field(TagMerchantName, normalizeText(p.Name, MaxNameLength))
	w.field(TagMerchantCity, normalizeText(p.City, MaxCityLength))
	w.field(TagAdditionalData, w.nested(tlvPair{tagReferenceID, ref}))
	if w.err != nil {
		return "", w.err
	}

	w.b.WriteString(crcPrefix)
	body := w.b.String()
	return body + CRC16(body), nil
}

type tlvPair struct{ tag, value string }

type fieldWriter struct {
	b   strings.Builder
	err error
}

func (w *fieldWriter) field(tag, value string) {
	if w.err != nil {
		return
	}
	f, err := Field(tag, value)
	if err != nil {
		w.err = err
		return
	}
	w.b.WriteString(f)
}

func (w *fieldWriter) nested(pairs ...tlvPair) string {
	var b strings.Builder
	for _, p := range pairs {
		f, err := Field(p.tag, p.value)
		if err != nil {
			if w.err == nil {
				w.err = err
			}
			return ""
		}
		b.WriteString(f)
	}
	return b.String()
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if !isDigit(s[i]) {
			return false
		}
	}
	return s != ""
}

func allUpper(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < 'A' || s[i] > 'Z' {
			return false
		}
	}
	return s != ""
}
