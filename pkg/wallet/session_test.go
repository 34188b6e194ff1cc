package wallet

import "testing"

func TestEqualAddresses(t *testing.T) {
	tests := []struct {
		name string
		a    string
		b    string
		want bool
	}{
		{
			name: "identical",
			a:    "0x1111111111111111111111111111111111111111",
			b:    "0x1111111111111111111111111111111111111111",
			want: true,
		},
		{
			name: "case differs",
			a:    "0xAbCd111111111111111111111111111111111111",
			b:    "0xabcd111111111111111111111111111111111111",
			want: true,
		},
		{
			name: "different accounts",
			a:    "0x1111111111111111111111111111111111111111",
			b:    "0x2222222222222222222222222222222222222222",
			want: false,
		},
		{name: "both empty", a: "", b: "", want: false},
		{name: "one empty", a: "0x1111111111111111111111111111111111111111", b: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EqualAddresses(tt.a, tt.b); got != tt.want {
				t.Errorf("EqualAddresses(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestParseKind(t *testing.T) {
	tests := []struct {
		in   string
		want Kind
	}{
		{"metamask", KindMetaMask},
		{"MetaMask", KindMetaMask},
		{"keystore", KindMetaMask},
		{"phantom", KindPhantom},
		{"", KindNone},
		{"ledgernano", KindNone},
	}
	for _, tt := range tests {
		if got := ParseKind(tt.in); got != tt.want {
			t.Errorf("ParseKind(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestValidAddress(t *testing.T) {
	tests := []struct {
		addr string
		want bool
	}{
		{"0x1111111111111111111111111111111111111111", true},
		{"0X1111111111111111111111111111111111111111", true},
		{"1111111111111111111111111111111111111111", true},
		{"0x1111", false},
		{"", false},
		{"0xzzzz111111111111111111111111111111111111", false},
	}
	for _, tt := range tests {
		if got := ValidAddress(tt.addr); got != tt.want {
			t.Errorf("ValidAddress(%q) = %v, want %v", tt.addr, got, tt.want)
		}
	}
}
