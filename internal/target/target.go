// Package target maps abstract (architecture, OS, ABI) triples to the
// identifier strings the native backend understands. Pure lookup tables,
// no state.
package target

import (
	"errors"
	"fmt"
)

// Arch enumerates the architectures the frontend can name.
type Arch uint8

const (
	ArchX8664 Arch = iota
	ArchI386
	ArchAArch64
	ArchARM
	ArchRISCV32
	ArchRISCV64
	ArchMIPS
	ArchMIPS64
	ArchPPC64
	ArchPPC64LE
	ArchSPARCV9
	ArchS390X
	ArchWasm32
	ArchWasm64
	ArchAVR
	ArchMSP430
	// ArchKalimba is a DSP family the native backend has no target for.
	ArchKalimba
)

// OS enumerates the operating systems the frontend can name.
type OS uint8

const (
	OSFreestanding OS = iota
	OSLinux
	OSMacOS
	OSWindows
	OSFreeBSD
	OSNetBSD
	OSOpenBSD
	OSDragonFly
	OSFuchsia
	OSWASI
)

// ABI enumerates the application binary interfaces the frontend can name.
type ABI uint8

const (
	ABINone ABI = iota
	ABIGNU
	ABIGNUEABI
	ABIGNUEABIHF
	ABIMusl
	ABIMuslEABI
	ABIMuslEABIHF
	ABIMSVC
	ABIEABI
	ABIEABIHF
)

// Triple identifies a compilation target abstractly.
type Triple struct {
	Arch Arch
	OS   OS
	ABI  ABI
}

// ErrUnsupportedArch is returned for architectures the native backend
// cannot target at all.
var ErrUnsupportedArch = errors.New("architecture not supported by the native backend")

var archNames = map[Arch]string{
	ArchX8664:   "x86_64",
	ArchI386:    "i386",
	ArchAArch64: "aarch64",
	ArchARM:     "arm",
	ArchRISCV32: "riscv32",
	ArchRISCV64: "riscv64",
	ArchMIPS:    "mips",
	ArchMIPS64:  "mips64",
	ArchPPC64:   "powerpc64",
	ArchPPC64LE: "powerpc64le",
	ArchSPARCV9: "sparcv9",
	ArchS390X:   "s390x",
	ArchWasm32:  "wasm32",
	ArchWasm64:  "wasm64",
	ArchAVR:     "avr",
	ArchMSP430:  "msp430",
}

var osNames = map[OS]string{
	OSFreestanding: "unknown",
	OSLinux:        "linux",
	OSMacOS:        "macosx",
	OSWindows:      "windows",
	OSFreeBSD:      "freebsd",
	OSNetBSD:       "netbsd",
	OSOpenBSD:      "openbsd",
	OSDragonFly:    "dragonfly",
	OSFuchsia:      "fuchsia",
	OSWASI:         "wasi",
}

var abiNames = map[ABI]string{
	ABINone:       "none",
	ABIGNU:        "gnu",
	ABIGNUEABI:    "gnueabi",
	ABIGNUEABIHF:  "gnueabihf",
	ABIMusl:       "musl",
	ABIMuslEABI:   "musleabi",
	ABIMuslEABIHF: "musleabihf",
	ABIMSVC:       "msvc",
	ABIEABI:       "eabi",
	ABIEABIHF:     "eabihf",
}

// ArchName returns the backend name of an architecture, or
// ErrUnsupportedArch when the backend cannot target it.
func ArchName(a Arch) (string, error) {
	name, ok := archNames[a]
	if !ok {
		return "", fmt.Errorf("%w: arch %d", ErrUnsupportedArch, a)
	}
	return name, nil
}

// OSName returns the backend name of an operating system.
func OSName(o OS) string {
	if name, ok := osNames[o]; ok {
		return name
	}
	return "unknown"
}

// ABIName returns the backend name of an ABI.
func ABIName(a ABI) string {
	if name, ok := abiNames[a]; ok {
		return name
	}
	return "none"
}

// String resolves the triple to the backend identifier
// <arch>-unknown-<os>-<abi>. The only failure mode is an architecture
// the backend has no target for.
func (t Triple) String() (string, error) {
	arch, err := ArchName(t.Arch)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-unknown-%s-%s", arch, OSName(t.OS), ABIName(t.ABI)), nil
}

// Native is the triple the toolchain itself targets by default,
// detected from the host platform.
func Native() Triple {
	return nativeTriple
}
