package reconcile

import "testing"

func TestLooseEqual(t *testing.T) {
	tests := []struct {
		name    string
		desired interface{}
		live    interface{}
		want    bool
	}{
		{"identical strings", "on", "on", true},
		{"different strings", "on", "off", false},
		{"int vs float64", 1, float64(1), true},
		{"numeric string vs float64", "1", float64(1), true},
		{"numeric string vs int", "50", 50, true},
		{"float magnitudes differ", float64(1), float64(2), false},
		{"whole float vs int string", float64(100), "100", true},
		{"fractional float vs string", "0.5", float64(0.5), true},
		{"padded numeric string", " 7 ", 7, true},
		{"bool vs bool equal", true, true, true},
		{"bool vs bool differ", true, false, false},
		{"bool is not numeric", true, 1, false},
		{"string vs bool", "true", true, true},
		{"nil vs value", nil, "on", false},
		{"nil vs nil", nil, nil, true},
		{"non-numeric strings differ by case", "On", "on", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := looseEqual(tt.desired, tt.live); got != tt.want {
				t.Errorf("looseEqual(%v, %v) = %v, want %v", tt.desired, tt.live, got, tt.want)
			}
		})
	}
}

func TestIsNumericText(t *testing.T) {
	tests := []struct {
		value interface{}
		want  bool
	}{
		{"1", true},
		{"3.5", true},
		{" 42 ", true},
		{"on", false},
		{"", false},
		{1, false},
		{float64(1), false},
		{true, false},
		{nil, false},
	}

	for _, tt := range tests {
		if got := isNumericText(tt.value); got != tt.want {
			t.Errorf("isNumericText(%v) = %v, want %v", tt.value, got, tt.want)
		}
	}
}

func TestFormatValue(t *testing.T) {
	tests := []struct {
		value interface{}
		want  string
	}{
		{float64(1), "1"},
		{float64(1.5), "1.5"},
		{float32(20), "20"},
		{42, "42"},
		{"on", "on"},
		{true, "true"},
		{nil, "<nil>"},
	}

	for _, tt := range tests {
		if got := formatValue(tt.value); got != tt.want {
			t.Errorf("formatValue(%v) = %q, want %q", tt.value, got, tt.want)
		}
	}
}
