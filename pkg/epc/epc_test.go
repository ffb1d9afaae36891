package epc

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// DE89370400440532013000 is the standard IBAN example with a valid checksum.
const testIBAN = "DE89 3704 0044 0532 0130 00"

func TestEncode(t *testing.T) {
	p := Payment{
		Name:        "Muster GmbH",
		IBAN:        testIBAN,
		BIC:         "COBADEFFXXX",
		AmountCents: 123456,
		Remittance:  "RE-2026-0042",
	}
	payload, err := p.Encode()
	require.NoError(t, err)

	lines := strings.Split(payload, "\n")
	require.Len(t, lines, 11)
	assert.Equal(t, "BCD", lines[0])
	assert.Equal(t, "002", lines[1])
	assert.Equal(t, "SCT", lines[3])
	assert.Equal(t, "COBADEFFXXX", lines[4])
	assert.Equal(t, "Muster GmbH", lines[5])
	assert.Equal(t, "DE89370400440532013000", lines[6])
	assert.Equal(t, "EUR1234.56", lines[7])
	assert.Equal(t, "RE-2026-0042", lines[10])
}

func TestEncodeOpenAmount(t *testing.T) {
	payload, err := Payment{Name: "Muster GmbH", IBAN: testIBAN}.Encode()
	require.NoError(t, err)
	lines := strings.Split(payload, "\n")
	assert.Equal(t, "", lines[7])
}

func TestEncodeRejects(t *testing.T) {
	_, err := Payment{Name: "", IBAN: testIBAN}.Encode()
	assert.Error(t, err)

	_, err = Payment{Name: "X", IBAN: "DE00370400440532013000"}.Encode()
	assert.Error(t, err, "bad checksum must be rejected")

	_, err = Payment{Name: "X", IBAN: "DE89"}.Encode()
	assert.Error(t, err)

	_, err = Payment{Name: "X", IBAN: testIBAN, AmountCents: -1}.Encode()
	assert.Error(t, err)
}

func TestIBANNormalization(t *testing.T) {
	assert.Equal(t, "DE89370400440532013000", normalizeIBAN(" de89 3704 0044 0532 0130 00 "))
}
