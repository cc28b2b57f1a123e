package parse

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paywatch/paywatch/internal/model"
)

func newTestParser(t *testing.T) *Parser {
	t.Helper()
	p, err := NewParser(DefaultConfig())
	require.NoError(t, err)
	return p
}

func TestNewParser(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{
			name:    "default config compiles",
			cfg:     DefaultConfig(),
			wantErr: false,
		},
		{
			name: "invalid amount pattern",
			cfg: Config{
				GateKeywords:   []string{"received"},
				AmountPatterns: []string{`[invalid`},
			},
			wantErr: true,
		},
		{
			name: "invalid reference pattern",
			cfg: Config{
				GateKeywords:      []string{"received"},
				AmountPatterns:    []string{`(\d+)`},
				ReferencePatterns: []string{`(unclosed`},
			},
			wantErr: true,
		},
		{
			name:    "empty config",
			cfg:     Config{},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewParser(tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestParse_KeywordGate(t *testing.T) {
	p := newTestParser(t)
	observed := time.Now()

	tests := []struct {
		name string
		text string
	}{
		{"otp message", "Your OTP for login is 123456. Do not share it."},
		{"debit alert", "Rs. 500.00 debited from A/c XX1234 on 01-09"},
		{"promo", "Get 10% cashback on your next recharge!"},
		{"empty", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Nil(t, p.Parse(tt.text, model.ChannelSMS, observed))
		})
	}
}

func TestParse_AmountExtraction(t *testing.T) {
	p := newTestParser(t)
	observed := time.Now()

	tests := []struct {
		name       string
		text       string
		wantAmount float64
		wantNil    bool
	}{
		{
			name:       "received with rupee prefix",
			text:       "You have received Rs. 250.00 via UPI",
			wantAmount: 250.00,
		},
		{
			name:       "credited with INR and thousands separator",
			text:       "A/c XX1234 credited with INR 1,500.00 on 01-09-26",
			wantAmount: 1500.00,
		},
		{
			name:       "amount before verb",
			text:       "Rs 750 received from customer",
			wantAmount: 750,
		},
		{
			name:       "payment of phrasing",
			text:       "Payment of Rs. 320.50 received successfully",
			wantAmount: 320.50,
		},
		{
			name:       "rupee sign",
			text:       "₹99 credited to your account",
			wantAmount: 99,
		},
		{
			name:    "gated but no amount",
			text:    "Payment received successfully, check the app for details",
			wantNil: true,
		},
		{
			name:    "zero amount rejected",
			text:    "You have received Rs 0 today",
			wantNil: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			candidate := p.Parse(tt.text, model.ChannelNotification, observed)
			if tt.wantNil {
				assert.Nil(t, candidate)
				return
			}
			require.NotNil(t, candidate)
			assert.InDelta(t, tt.wantAmount, candidate.Amount, 0.001)
			assert.Equal(t, model.ChannelNotification, candidate.SourceChannel)
			assert.Equal(t, observed, candidate.ObservedAt)
			assert.Equal(t, tt.text, candidate.RawText)
		})
	}
}

func TestParse_ReferenceExtraction(t *testing.T) {
	p := newTestParser(t)

	tests := []struct {
		name    string
		text    string
		wantRef string
	}{
		{
			name:    "bank UPI ref no",
			text:    "A/c XX1234 credited with INR 500.00. UPI Ref No 123456789012",
			wantRef: "123456789012",
		},
		{
			name:    "txn id label",
			text:    "Received Rs 200 via PhonePe. Txn ID PH98765432",
			wantRef: "PH98765432",
		},
		{
			name:    "colon form",
			text:    "Payment received Rs 300. Ref: AB12CD34EF",
			wantRef: "AB12CD34EF",
		},
		{
			name:    "no digits is not a reference",
			text:    "Received Rs 100. Txn id pending",
			wantRef: "",
		},
		{
			name:    "no reference",
			text:    "You have received Rs 50 today",
			wantRef: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			candidate := p.Parse(tt.text, model.ChannelSMS, time.Now())
			require.NotNil(t, candidate)
			assert.Equal(t, tt.wantRef, candidate.Reference)
		})
	}
}

func TestParse_CounterpartyExtraction(t *testing.T) {
	p := newTestParser(t)

	tests := []struct {
		name      string
		text      string
		wantLabel string
	}{
		{
			name:      "from with trailing channel words",
			text:      "Payment successful! You received Rs 500 from Ramesh Kumar via Google Pay",
			wantLabel: "Ramesh Kumar",
		},
		{
			name:      "has sent phrasing",
			text:      "Asha has sent you Rs 250 - payment received",
			wantLabel: "Asha",
		},
		{
			name:      "upi handle",
			text:      "Received Rs 120 from asha@okicici via UPI",
			wantLabel: "asha@okicici",
		},
		{
			name:      "no counterparty",
			text:      "A/c credited with INR 900.00",
			wantLabel: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			candidate := p.Parse(tt.text, model.ChannelNotification, time.Now())
			require.NotNil(t, candidate)
			assert.Equal(t, tt.wantLabel, candidate.CounterpartyLabel)
		})
	}
}

func TestParse_AppDetection(t *testing.T) {
	p := newTestParser(t)

	tests := []struct {
		name    string
		text    string
		wantApp string
	}{
		{"google pay", "Received Rs 100 via Google Pay", "Google Pay"},
		{"gpay", "GPay: payment received Rs 100", "Google Pay"},
		{"phonepe", "PhonePe - Rs 100 credited", "PhonePe"},
		{"paytm", "Paytm payment received Rs 100", "Paytm"},
		{"cred needs word boundary", "Rs 100 credited to your account", ""},
		{"unknown app", "SomePay: Rs 100 received", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			candidate := p.Parse(tt.text, model.ChannelNotification, time.Now())
			require.NotNil(t, candidate)
			assert.Equal(t, tt.wantApp, candidate.SourceApp)
		})
	}
}

func TestParse_ConfidenceScoring(t *testing.T) {
	p := newTestParser(t)

	tests := []struct {
		name string
		text string
		want int
	}{
		{
			// base 50 + upi 20 + decimal 5
			name: "upi notification with decimal amount",
			text: "You have received Rs. 250.00 via UPI. Txn successful.",
			want: 75,
		},
		{
			// base 50 + success 15 + app 10
			name: "app notification",
			text: "Payment successful! You received Rs 500 via Google Pay",
			want: 75,
		},
		{
			// base 50 + upi 20 + bank 5 + decimal 5
			name: "bank sms",
			text: "A/c XX1234 credited with INR 1,500.00. UPI Ref No 123456789012. - HDFC Bank",
			want: 80,
		},
		{
			// base 50 only
			name: "bare confirmation",
			text: "received Rs 42 today",
			want: 50,
		},
		{
			// every boost fires, clamped from 130
			name: "kitchen sink clamps to 100",
			text: "UPI payment successful. Amount credited to account via PhonePe bank. Reference txn id 12345678. Received Rs. 999.99",
			want: 100,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			candidate := p.Parse(tt.text, model.ChannelSMS, time.Now())
			require.NotNil(t, candidate)
			assert.Equal(t, tt.want, candidate.ContentConfidence)
		})
	}
}

func TestParse_ConfidenceBounds(t *testing.T) {
	p := newTestParser(t)

	texts := []string{
		"received ₹1",
		"UPI BHIM transaction successful payment successful amount credited to account reference txn id bank account received Rs. 1.00 via Google Pay PhonePe Paytm",
		"credited INR 99,999,999.99",
	}

	for _, text := range texts {
		candidate := p.Parse(text, model.ChannelNotification, time.Now())
		if candidate == nil {
			continue
		}
		assert.GreaterOrEqual(t, candidate.ContentConfidence, 0, "text: %s", text)
		assert.LessOrEqual(t, candidate.ContentConfidence, 100, "text: %s", text)
	}
}
