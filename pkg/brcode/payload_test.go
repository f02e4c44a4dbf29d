package brcode

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func newTestEncoder(t *testing.T) *Encoder {
	t.Helper()
	enc, err := NewEncoder(DefaultOptions())
	require.NoError(t, err)
	return enc
}

func TestEncode_FullPayload(t *testing.T) {
	enc := newTestEncoder(t)
	got, err := enc.Encode(Payload{
		Key:         "pai.joao@example.com",
		Name:        "Pai João de Oxóssi",
		City:        "São Paulo",
		Amount:      decimal.RequireFromString("150"),
		ReferenceID: "PIX1718000000000ABCDEF12",
	})
	require.NoError(t, err)
	require.Equal(t,
		"00020126420014br.gov.bcb.pix0120pai.joao@example.com5204000053039865406150.005802BR5918PAI JOAO DE OXOSSI6009SAO PAULO62280524PIX1718000000000ABCDEF126304D59D",
		got)
}

func TestEncode_EmptyLabelAndCity(t *testing.T) {
	enc := newTestEncoder(t)
	got, err := enc.Encode(Payload{
		Key:         "+5511999998888",
		Amount:      decimal.NewFromInt(10),
		ReferenceID: "REF-001",
	})
	require.NoError(t, err)
	require.Equal(t,
		"00020126360014br.gov.bcb.pix0114+5511999998888520400005303986540510.005802BR5900600062100506REF00163046A43",
		got)
}

func TestEncode_ChecksumRoundTrip(t *testing.T) {
	enc := newTestEncoder(t)
	inputs := []Payload{
		{Key: "a@b.co", Name: "Ana", City: "Recife", Amount: decimal.RequireFromString("0.01"), ReferenceID: "x"},
		{Key: "123e4567-e89b-12d3-a456-426614174000", Name: "Terreiro Ilê Axé", City: "Salvador", Amount: decimal.RequireFromString("99999.99"), ReferenceID: "PIX17000000000001234ABCD"},
		{Key: "12345678900", Name: strings.Repeat("Ç", 60), City: "", Amount: decimal.RequireFromString("1.5"), ReferenceID: ""},
	}
	for _, p := range inputs {
		out, err := enc.Encode(p)
		require.NoError(t, err)

		idx := strings.LastIndex(out, "6304")
		require.Equal(t, len(out)-8, idx)
		prefix := out[:idx+4]
		require.Equal(t, CRC16(prefix), out[len(out)-4:])
		require.NoError(t, Verify(out))
	}
}

func TestEncode_TruncatesAndNormalizes(t *testing.T) {
	enc := newTestEncoder(t)
	label := "ÁÉÍÓÚÂÊÔÃÕÇáéíóúâêôãõçÀàÜüÁÉÍÓÚÂÊÔÃÕÇáéí"
	require.Equal(t, 40, len([]rune(label)))

	out, err := enc.Encode(Payload{
		Key:         "12345678900",
		Name:        label,
		City:        "Florianópolis do Sul",
		Amount:      decimal.NewFromInt(10),
		ReferenceID: "ref",
	})
	require.NoError(t, err)

	fields, err := Decode(out)
	require.NoError(t, err)
	name, ok := Lookup(fields, TagMerchantName)
	require.True(t, ok)
	require.Equal(t, "AEIOUAEOAOCAEIOUAEOAOCAAU", name)
	require.Len(t, name, 25)

	city, ok := Lookup(fields, TagMerchantCity)
	require.True(t, ok)
	require.Equal(t, "FLORIANOPOLIS D", city)
	require.Len(t, city, 15)
}

func TestEncode_AmountFormatting(t *testing.T) {
	enc := newTestEncoder(t)
	cases := map[string]string{
		"10":      "10.00",
		"10.005":  "10.01",
		"10.004":  "10.00",
		"1234.5":  "1234.50",
		"0.125":   "0.13",
		"1000000": "1000000.00",
	}
	for in, want := range cases {
		out, err := enc.Encode(Payload{Key: "k@x.io", Amount: decimal.RequireFromString(in), ReferenceID: "r"})
		require.NoError(t, err)
		fields, err := Decode(out)
		require.NoError(t, err)
		got, _ := Lookup(fields, TagAmount)
		require.Equal(t, want, got, "amount %s", in)
	}
}

func TestEncode_ReferenceNormalization(t *testing.T) {
	enc := newTestEncoder(t)
	out, err := enc.Encode(Payload{Key: "k@x.io", Amount: decimal.NewFromInt(1), ReferenceID: "abc-123_XYZ!" + strings.Repeat("9", 30)})
	require.NoError(t, err)
	fields, err := Decode(out)
	require.NoError(t, err)
	add, _ := Lookup(fields, TagAdditionalData)
	sub, err := Decode(add)
	require.NoError(t, err)
	ref, _ := Lookup(sub, "05")
	require.Equal(t, "abc123XYZ"+strings.Repeat("9", 16), ref)

	out, err = enc.Encode(Payload{Key: "k@x.io", Amount: decimal.NewFromInt(1), ReferenceID: "---"})
	require.NoError(t, err)
	require.Contains(t, out, "62070503***")
}

func TestEncode_RejectsInvalidInput(t *testing.T) {
	enc := newTestEncoder(t)

	_, err := enc.Encode(Payload{Key: "", Amount: decimal.NewFromInt(1)})
	require.ErrorIs(t, err, ErrInvalidKey)

	_, err = enc.Encode(Payload{Key: strings.Repeat("k", 100), Amount: decimal.NewFromInt(1)})
	require.ErrorIs(t, err, ErrInvalidKey)

	_, err = enc.Encode(Payload{Key: strings.Repeat("k", enc.MaxKeyLength()+1), Amount: decimal.NewFromInt(1)})
	require.ErrorIs(t, err, ErrInvalidKey)

	_, err = enc.Encode(Payload{Key: "chave@exemplo.com.br", Amount: decimal.Zero})
	require.ErrorIs(t, err, ErrInvalidAmount)

	_, err = enc.Encode(Payload{Key: "chave@exemplo.com.br", Amount: decimal.RequireFromString("-5")})
	require.ErrorIs(t, err, ErrInvalidAmount)

	_, err = enc.Encode(Payload{Key: "chave@exemplo.com.br", Amount: decimal.RequireFromString("0.004")})
	require.ErrorIs(t, err, ErrInvalidAmount)
}

func TestEncode_LongestKeyFits(t *testing.T) {
	enc := newTestEncoder(t)
	require.Equal(t, 77, enc.MaxKeyLength())
	out, err := enc.Encode(Payload{Key: strings.Repeat("k", 77), Amount: decimal.NewFromInt(1)})
	require.NoError(t, err)
	require.NoError(t, Verify(out))
}

func TestNewEncoder_ValidatesOptions(t *testing.T) {
	bad := []Options{
		{GUI: "", MerchantCategoryCode: "0000", CurrencyCode: "986", CountryCode: "BR"},
		{GUI: "br.gov.bcb.pix", MerchantCategoryCode: "00", CurrencyCode: "986", CountryCode: "BR"},
		{GUI: "br.gov.bcb.pix", MerchantCategoryCode: "0000", CurrencyCode: "BRL", CountryCode: "BR"},
		{GUI: "br.gov.bcb.pix", MerchantCategoryCode: "0000", CurrencyCode: "986", CountryCode: "br"},
	}
	for _, o := range bad {
		_, err := NewEncoder(o)
		require.ErrorIs(t, err, ErrInvalidOptions)
	}
}
