package target

import (
	"fmt"
	"sort"
	"strings"
)

// Parse reads an abstract triple of the form <arch>-<os>-<abi>, with the
// OS and ABI parts optional ("x86_64", "x86_64-linux",
// "x86_64-linux-gnu"). "native" yields the host triple.
func Parse(s string) (Triple, error) {
	if s == "" || s == "native" {
		return Native(), nil
	}
	parts := strings.Split(s, "-")
	if len(parts) > 3 {
		return Triple{}, fmt.Errorf("malformed target %q: want arch[-os[-abi]]", s)
	}

	t := Triple{OS: OSFreestanding, ABI: ABINone}
	arch, ok := reverse(archNames)[parts[0]]
	if !ok {
		return Triple{}, fmt.Errorf("unknown architecture %q", parts[0])
	}
	t.Arch = arch

	if len(parts) > 1 {
		os, ok := reverse(osNames)[parts[1]]
		if !ok {
			return Triple{}, fmt.Errorf("unknown operating system %q", parts[1])
		}
		t.OS = os
	}
	if len(parts) > 2 {
		abi, ok := reverse(abiNames)[parts[2]]
		if !ok {
			return Triple{}, fmt.Errorf("unknown ABI %q", parts[2])
		}
		t.ABI = abi
	}
	return t, nil
}

func reverse[K comparable](m map[K]string) map[string]K {
	out := make(map[string]K, len(m))
	for k, v := range m {
		out[v] = k
	}
	return out
}

// SupportedArchNames lists the architectures the backend can target,
// sorted for stable output.
func SupportedArchNames() []string {
	out := make([]string, 0, len(archNames))
	for _, name := range archNames {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// OSNames lists the known operating system names, sorted.
func OSNames() []string {
	out := make([]string, 0, len(osNames))
	for _, name := range osNames {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// ABINames lists the known ABI names, sorted.
func ABINames() []string {
	out := make([]string, 0, len(abiNames))
	for _, name := range abiNames {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
