package ledger

import (
	"math/big"
	"testing"
)

func TestToBase(t *testing.T) {
	tests := []struct {
		name    string
		amount  string
		want    string
		wantErr bool
	}{
		{name: "whole unit", amount: "1", want: "1000000000000000000"},
		{name: "cent", amount: "0.01", want: "10000000000000000"},
		{name: "smallest unit", amount: "0.000000000000000001", want: "1"},
		{name: "mixed", amount: "2.5", want: "2500000000000000000"},
		{name: "zero", amount: "0", want: "0"},
		{name: "leading dot", amount: ".5", want: "500000000000000000"},
		{name: "too many places", amount: "0.0000000000000000001", wantErr: true},
		{name: "not a number", amount: "abc", wantErr: true},
		{name: "empty", amount: "", wantErr: true},
		{name: "double dot", amount: "1.2.3", wantErr: true},
		{name: "sign inside fraction", amount: "1.-5", wantErr: true},
		{name: "sign inside whole", amount: "1-0.5", wantErr: true},
		{name: "bare sign", amount: "-", wantErr: true},
		{name: "bare dot", amount: ".", wantErr: true},
		{name: "plus prefix", amount: "+1", wantErr: true},
		{name: "double sign", amount: "--1", wantErr: true},
		{name: "hex digits", amount: "0x10", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToBase(tt.amount)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ToBase(%q) expected error, got %s", tt.amount, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ToBase(%q) unexpected error: %v", tt.amount, err)
			}
			if got.String() != tt.want {
				t.Errorf("ToBase(%q) = %s, want %s", tt.amount, got, tt.want)
			}
		})
	}
}

func TestFromBase(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  string
	}{
		{name: "whole unit", value: "1000000000000000000", want: "1"},
		{name: "cent", value: "10000000000000000", want: "0.01"},
		{name: "smallest unit", value: "1", want: "0.000000000000000001"},
		{name: "trailing zeros trimmed", value: "2500000000000000000", want: "2.5"},
		{name: "zero", value: "0", want: "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, ok := new(big.Int).SetString(tt.value, 10)
			if !ok {
				t.Fatalf("bad test value %q", tt.value)
			}
			if got := FromBase(v); got != tt.want {
				t.Errorf("FromBase(%s) = %q, want %q", tt.value, got, tt.want)
			}
		})
	}
}

func TestUnitRoundTrip(t *testing.T) {
	for _, amount := range []string{"0.01", "1", "123.456789", "0.000000000000000001"} {
		base, err := ToBase(amount)
		if err != nil {
			t.Fatalf("ToBase(%q): %v", amount, err)
		}
		if got := FromBase(base); got != amount {
			t.Errorf("round trip %q -> %s -> %q", amount, base, got)
		}
	}
}
