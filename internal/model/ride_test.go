package model

import "testing"

func TestParseRideType(t *testing.T) {
	tests := []struct {
		input   string
		want    RideType
		wantErr bool
	}{
		{input: "offer", want: RideTypeOffer},
		{input: "demand", want: RideTypeDemand},
		{input: "Offer", wantErr: true},
		{input: "ride", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseRideType(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("ParseRideType(%q) expected error, got %q", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseRideType(%q) error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseRideType(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
