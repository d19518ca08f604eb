package parse

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReading(t *testing.T) {
	testCases := []struct {
		name          string
		raw           string
		zeroIsMissing bool
		expected      float64
		expectOK      bool
	}{
		{
			name:     "Plain decimal",
			raw:      "7.5",
			expected: 7.5,
			expectOK: true,
		},
		{
			name:     "Decimal comma",
			raw:      "7,5",
			expected: 7.5,
			expectOK: true,
		},
		{
			name:     "Integer",
			raw:      "150",
			expected: 150,
			expectOK: true,
		},
		{
			name:     "Surrounding whitespace",
			raw:      "  6,8  ",
			expected: 6.8,
			expectOK: true,
		},
		{
			name:     "Empty string",
			raw:      "",
			expectOK: false,
		},
		{
			name:     "Non-numeric",
			raw:      "n/a",
			expectOK: false,
		},
		{
			name:          "Zero with sentinel semantics",
			raw:           "0",
			zeroIsMissing: true,
			expectOK:      false,
		},
		{
			name:     "Zero as a real measurement",
			raw:      "0",
			expected: 0,
			expectOK: true,
		},
		{
			name:          "Non-zero with sentinel semantics",
			raw:           "0,3",
			zeroIsMissing: true,
			expected:      0.3,
			expectOK:      true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			v, ok := Reading(tc.raw, tc.zeroIsMissing)
			assert.Equal(t, tc.expectOK, ok)
			if tc.expectOK {
				assert.Equal(t, tc.expected, v)
			}
		})
	}
}

func TestMoney(t *testing.T) {
	testCases := []struct {
		name     string
		raw      string
		expected float64
	}{
		{name: "Plain integer", raw: "300", expected: 300},
		{name: "Currency symbol and spaces", raw: "$ 1250", expected: 1250},
		{name: "Latin thousands and decimal comma", raw: "$1.250,50", expected: 1250.50},
		{name: "English thousands and decimal dot", raw: "1,200.00", expected: 1200},
		{name: "Decimal comma only", raw: "300,75", expected: 300.75},
		{name: "Text with embedded amount", raw: "aprox 450 pesos", expected: 450},
		{name: "Empty", raw: "", expected: 0},
		{name: "No digits", raw: "sin recaudo", expected: 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Money(tc.raw))
		})
	}
}

func TestPhone(t *testing.T) {
	testCases := []struct {
		name     string
		raw      string
		expected string
	}{
		{name: "International with plus", raw: "+52 1 55 1234 5678", expected: "5215512345678"},
		{name: "Dashes and parens", raw: "(55) 1234-5678", expected: "5512345678"},
		{name: "Already clean", raw: "5215512345678", expected: "5215512345678"},
		{name: "Empty", raw: "", expected: ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Phone(tc.raw))
		})
	}
}
