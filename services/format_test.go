package services

import "testing"

func TestFormatCurrency_Values(t *testing.T) {
	tests := []struct {
		name   string
		input  float64
		expect string
	}{
		{"zero", 0, "AED 0.00"},
		{"small integer", 5, "AED 5.00"},
		{"with decimals", 42.5, "AED 42.50"},
		{"hundreds", 999.99, "AED 999.99"},
		{"thousands", 1234.5, "AED 1,234.50"},
		{"ten thousands", 12345, "AED 12,345.00"},
		{"hundred thousands", 123456.78, "AED 123,456.78"},
		{"millions", 1234567.89, "AED 1,234,567.89"},
		{"rounds up", 2.999, "AED 3.00"},
		{"negative", -2500.5, "-AED 2,500.50"},
		{"negative rounds to zero", -0.001, "AED 0.00"},
		{"exact thousands boundary", 1000, "AED 1,000.00"},
		{"exact million boundary", 1000000, "AED 1,000,000.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatCurrency(tt.input)
			if got != tt.expect {
				t.Errorf("FormatCurrency(%v) = %q, want %q", tt.input, got, tt.expect)
			}
		})
	}
}

func TestGroupThousands(t *testing.T) {
	tests := []struct {
		input  string
		expect string
	}{
		{"0", "0"},
		{"123", "123"},
		{"1234", "1,234"},
		{"123456", "123,456"},
		{"1234567", "1,234,567"},
	}
	for _, tt := range tests {
		if got := groupThousands(tt.input); got != tt.expect {
			t.Errorf("groupThousands(%q) = %q, want %q", tt.input, got, tt.expect)
		}
	}
}

func TestFormatCBM(t *testing.T) {
	if got := FormatCBM(1.23456); got != "1.235" {
		t.Errorf("FormatCBM = %q, want 1.235", got)
	}
}
