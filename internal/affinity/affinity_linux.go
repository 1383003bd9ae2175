//go:build linux && cgo

package affinity

// #cgo LDFLAGS: -lnuma
// #define _GNU_SOURCE
// #include <numa.h>
// #include <sched.h>
// #include <pthread.h>
// #include <string.h>
//
// int check_numa_avail() {
//     return numa_available();
// }
import "C"

import (
	"fmt"
	"runtime"
	"sync"
)

var (
	numaAvailOnce sync.Once
	numaAvailable bool
)

func isNumaAvailable() bool {
	numaAvailOnce.Do(func() {
		numaAvailable = C.check_numa_avail() != -1
	})
	return numaAvailable
}

func platformNodeCount() int {
	if !isNumaAvailable() {
		return 1
	}
	return int(C.numa_num_configured_nodes())
}

func platformCPUForNode(numaNode int) int {
	// libnuma exposes node-level binding; core-level placement within a
	// node is left to the OS scheduler once numa_run_on_node narrows it.
	_ = numaNode
	return 0
}

func platformPin(numaNode, cpuID int) error {
	runtime.LockOSThread()

	if cpuID >= 0 {
		var mask C.cpu_set_t
		C.CPU_ZERO(&mask)
		C.CPU_SET(C.int(cpuID), &mask)
		if ret, _ := C.pthread_setaffinity_np(C.pthread_self(), C.sizeof_cpu_set_t, &mask); ret != 0 {
			return fmt.Errorf("affinity: pthread_setaffinity_np failed for cpu %d", cpuID)
		}
	}

	if numaNode >= 0 {
		if !isNumaAvailable() {
			return fmt.Errorf("affinity: numa not available on this host")
		}
		if ret := C.numa_run_on_node(C.int(numaNode)); ret != 0 {
			return fmt.Errorf("affinity: numa_run_on_node(%d) failed", numaNode)
		}
	}

	return nil
}

func platformUnpin() error {
	defer runtime.UnlockOSThread()
	if isNumaAvailable() {
		C.numa_run_on_node(-1)
	}
	return nil
}
