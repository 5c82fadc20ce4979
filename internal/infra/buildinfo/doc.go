// Package buildinfo exposes version information injected via ldflags:
//
//	go build -ldflags "-X github.com/yndnr/fitplan-go/internal/infra/buildinfo.Version=v1.0.0"
//
// Values that were not injected fall back to what the Go toolchain embedded
// in the binary, when available.
package buildinfo
