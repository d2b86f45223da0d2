// Package devmem maps a live PLIC register block out of a physical-memory
// device file such as /dev/mem.
package devmem

import "errors"

// DefaultDevice is the device file mapped when none is named.
const DefaultDevice = "/dev/mem"

// ErrUnsupported is returned by Map on platforms without physical-memory
// mapping support.
var ErrUnsupported = errors.New("devmem: physical memory mapping unsupported on this platform")
