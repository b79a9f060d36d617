package target_test

import (
	"errors"
	"testing"

	"lumen/internal/target"
)

func TestTripleString(t *testing.T) {
	tests := []struct {
		name   string
		triple target.Triple
		want   string
	}{
		{
			name:   "linux_gnu",
			triple: target.Triple{Arch: target.ArchX8664, OS: target.OSLinux, ABI: target.ABIGNU},
			want:   "x86_64-unknown-linux-gnu",
		},
		{
			name:   "macos",
			triple: target.Triple{Arch: target.ArchAArch64, OS: target.OSMacOS, ABI: target.ABINone},
			want:   "aarch64-unknown-macosx-none",
		},
		{
			name:   "arm_hardfloat",
			triple: target.Triple{Arch: target.ArchARM, OS: target.OSLinux, ABI: target.ABIGNUEABIHF},
			want:   "arm-unknown-linux-gnueabihf",
		},
		{
			name:   "freestanding_wasm",
			triple: target.Triple{Arch: target.ArchWasm32, OS: target.OSFreestanding, ABI: target.ABINone},
			want:   "wasm32-unknown-unknown-none",
		},
		{
			name:   "riscv_musl",
			triple: target.Triple{Arch: target.ArchRISCV64, OS: target.OSLinux, ABI: target.ABIMusl},
			want:   "riscv64-unknown-linux-musl",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.triple.String()
			if err != nil {
				t.Fatalf("String() failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}

			// Resolution is pure: a second call must agree.
			again, err := tt.triple.String()
			if err != nil || again != got {
				t.Errorf("second resolution differs: %q vs %q (err=%v)", again, got, err)
			}
		})
	}
}

func TestTripleStringUnsupportedArch(t *testing.T) {
	triple := target.Triple{Arch: target.ArchKalimba, OS: target.OSLinux, ABI: target.ABIGNU}
	_, err := triple.String()
	if !errors.Is(err, target.ErrUnsupportedArch) {
		t.Fatalf("want ErrUnsupportedArch, got %v", err)
	}

	// Same failure kind every time.
	_, err2 := triple.String()
	if !errors.Is(err2, target.ErrUnsupportedArch) {
		t.Fatalf("second call: want ErrUnsupportedArch, got %v", err2)
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want target.Triple
		ok   bool
	}{
		{"x86_64-linux-gnu", target.Triple{Arch: target.ArchX8664, OS: target.OSLinux, ABI: target.ABIGNU}, true},
		{"wasm32", target.Triple{Arch: target.ArchWasm32, OS: target.OSFreestanding, ABI: target.ABINone}, true},
		{"aarch64-macosx", target.Triple{Arch: target.ArchAArch64, OS: target.OSMacOS, ABI: target.ABINone}, true},
		{"bogus-linux-gnu", target.Triple{}, false},
		{"x86_64-plan10", target.Triple{}, false},
		{"x86_64-linux-gnu-extra", target.Triple{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := target.Parse(tt.in)
			if tt.ok != (err == nil) {
				t.Fatalf("Parse(%q) error = %v, want ok=%t", tt.in, err, tt.ok)
			}
			if tt.ok && got != tt.want {
				t.Errorf("Parse(%q) = %+v, want %+v", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseNative(t *testing.T) {
	for _, in := range []string{"", "native"} {
		got, err := target.Parse(in)
		if err != nil {
			t.Fatalf("Parse(%q) failed: %v", in, err)
		}
		if got != target.Native() {
			t.Errorf("Parse(%q) = %+v, want native %+v", in, got, target.Native())
		}
	}
	if _, err := target.Native().String(); err != nil {
		t.Errorf("native triple must resolve: %v", err)
	}
}
