//go:build linux && !cgo

package affinity

import (
	"runtime"

	"golang.org/x/sys/unix"
)

// Without cgo there is no libnuma, so NUMA node topology and memory-node
// binding are unavailable; CPU pinning itself needs no cgo at all, since
// sched_setaffinity is a plain syscall, reachable through
// golang.org/x/sys/unix.
func platformNodeCount() int              { return 1 }
func platformCPUForNode(numaNode int) int { return 0 }

func platformPin(numaNode, cpuID int) error {
	runtime.LockOSThread()
	if cpuID < 0 {
		return nil
	}
	var set unix.CPUSet
	set.Zero()
	set.Set(cpuID)
	return unix.SchedSetaffinity(0, &set)
}

func platformUnpin() error {
	defer runtime.UnlockOSThread()
	n := runtime.NumCPU()
	if n <= 0 {
		n = 1
	}
	var set unix.CPUSet
	set.Zero()
	for i := 0; i < n; i++ {
		set.Set(i)
	}
	return unix.SchedSetaffinity(0, &set)
}
