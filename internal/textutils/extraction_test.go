package textutils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanDescription(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"arrow and spaces", "  →   debited ", "debited"},
		{"punctuation both ends", "-- Amazon.in Order #403 --", "Amazon.in Order #403"},
		{"inner whitespace", "Uber\tRide *  Airport   Drop", "Uber Ride * Airport Drop"},
		{"only symbols", " → * ", ""},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanDescription(tt.input))
		})
	}
}

func TestTokenize(t *testing.T) {
	assert.Equal(t, []string{"netflix", "subscription"}, Tokenize("NETFLIX.COM Subscription netflix", 3))
	assert.Equal(t, []string{"spotify", "premium"}, Tokenize("Spotify*Premium 1 mo", 3))
	assert.Empty(t, Tokenize("ATM fee", 3))
}

func TestExtractCounterparty(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"payee label", "Payee: ACME STORES; ref 12", "Acme Stores"},
		{"paid to", "Paid to john doe on 12/11", "John Doe"},
		{"received from", "Salary received from Globex Corp", "Globex Corp"},
		{"transfer to stops at amount", "NEFT transfer to John 5,000.00 Dr 12,000.00", "John"},
		{"from stops at reference digits", "IMPS from Priya 998877 credited", "Priya"},
		{"upi handle", "UPI/SWIGGY/4567/food", "Swiggy"},
		{"nothing", "STARBUCKS COFFEE MUMBAI", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractCounterparty(tt.input))
		})
	}
}
