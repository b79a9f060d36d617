package target

import "runtime"

var nativeTriple = detectNative()

func detectNative() Triple {
	t := Triple{Arch: ArchX8664, OS: OSLinux, ABI: ABIGNU}

	switch runtime.GOARCH {
	case "amd64":
		t.Arch = ArchX8664
	case "386":
		t.Arch = ArchI386
	case "arm64":
		t.Arch = ArchAArch64
	case "arm":
		t.Arch = ArchARM
	case "riscv64":
		t.Arch = ArchRISCV64
	case "mips":
		t.Arch = ArchMIPS
	case "mips64":
		t.Arch = ArchMIPS64
	case "ppc64":
		t.Arch = ArchPPC64
	case "ppc64le":
		t.Arch = ArchPPC64LE
	case "s390x":
		t.Arch = ArchS390X
	}

	switch runtime.GOOS {
	case "linux":
		t.OS = OSLinux
	case "darwin":
		t.OS, t.ABI = OSMacOS, ABINone
	case "windows":
		t.OS, t.ABI = OSWindows, ABIGNU
	case "freebsd":
		t.OS, t.ABI = OSFreeBSD, ABINone
	case "netbsd":
		t.OS, t.ABI = OSNetBSD, ABINone
	case "openbsd":
		t.OS, t.ABI = OSOpenBSD, ABINone
	case "dragonfly":
		t.OS, t.ABI = OSDragonFly, ABINone
	}

	if t.Arch == ArchARM && t.OS == OSLinux {
		t.ABI = ABIGNUEABIHF
	}
	return t
}
