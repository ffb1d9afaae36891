// Package epc builds SEPA credit transfer payloads following the EPC069-12
// quick response code guideline ("Girocode"). The payload is the text encoded
// into payment QR codes understood by German banking apps.
package epc

import (
	"errors"
	"fmt"
	"strings"
)

const (
	serviceTag = "BCD"
	version    = "002" // version 002 makes the BIC optional within the EEA
	charset    = "1"   // UTF-8
	sctID      = "SCT"

	maxNameLen       = 70
	maxRemittanceLen = 140
)

// Payment describes a single SEPA credit transfer.
type Payment struct {
	Name        string // beneficiary, required
	IBAN        string // required
	BIC         string // optional with version 002
	AmountCents int64  // in EUR cents; 0 lets the payer fill the amount in
	Remittance  string // unstructured reference, e.g. invoice number
}

// Encode renders the payload. Field order and line separators are fixed by
// the guideline; trailing empty lines are kept because some readers require
// the full field count.
func (p Payment) Encode() (string, error) {
	name := strings.TrimSpace(p.Name)
	if name == "" {
		return "", errors.New("epc: beneficiary name required")
	}
	if len([]rune(name)) > maxNameLen {
		return "", fmt.Errorf("epc: beneficiary name exceeds %d characters", maxNameLen)
	}
	iban := normalizeIBAN(p.IBAN)
	if err := validateIBAN(iban); err != nil {
		return "", err
	}
	if p.AmountCents < 0 {
		return "", errors.New("epc: negative amount")
	}
	// EPC caps the amount field at 999999999.99
	if p.AmountCents > 99999999999 {
		return "", errors.New("epc: amount out of range")
	}
	remittance := strings.TrimSpace(p.Remittance)
	if len([]rune(remittance)) > maxRemittanceLen {
		remittance = string([]rune(remittance)[:maxRemittanceLen])
	}

	amount := ""
	if p.AmountCents > 0 {
		amount = fmt.Sprintf("EUR%d.%02d", p.AmountCents/100, p.AmountCents%100)
	}

	lines := []string{
		serviceTag,
		version,
		charset,
		sctID,
		strings.ToUpper(strings.TrimSpace(p.BIC)),
		name,
		iban,
		amount,
		"", // purpose code, unused
		"", // structured reference, unused
		remittance,
	}
	return strings.Join(lines, "\n"), nil
}

func normalizeIBAN(iban string) string {
	return strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(iban), " ", ""))
}

// validateIBAN checks length bounds and the ISO 7064 mod-97 checksum.
func validateIBAN(iban string) error {
	if len(iban) < 15 || len(iban) > 34 {
		return errors.New("epc: invalid IBAN length")
	}
	// move the first four characters to the end, then map letters to numbers
	rearranged := iban[4:] + iban[:4]
	rem := 0
	for _, r := range rearranged {
		var v int
		switch {
		case r >= '0' && r <= '9':
			v = int(r - '0')
		case r >= 'A' && r <= 'Z':
			v = int(r-'A') + 10
		default:
			return errors.New("epc: invalid IBAN character")
		}
		if v >= 10 {
			rem = (rem*100 + v) % 97
		} else {
			rem = (rem*10 + v) % 97
		}
	}
	if rem != 1 {
		return errors.New("epc: IBAN checksum mismatch")
	}
	return nil
}
