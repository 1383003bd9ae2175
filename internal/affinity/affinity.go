// Package affinity binds worker goroutines to NUMA nodes and CPU cores.
//
// Grounded on the platform affinity split in
// _examples/momentics-hioload-ws/internal/concurrency/{affinity_linux.go,
// pin_linux.go,affinity_windows.go,affinity_other.go}: a platform-neutral
// API here, one implementation file per OS selected by build tags, cgo
// used only where the Linux implementation needs libnuma and
// pthread_setaffinity_np.
package affinity

// Pin binds the calling goroutine's OS thread to cpuID within numaNode.
// numaNode < 0 skips NUMA binding; cpuID < 0 skips CPU binding. On Linux
// and Windows, Pin locks the goroutine to its OS thread for the duration;
// call Unpin to release it. A non-nil error means the platform attempted
// the binding and it failed; platforms with no affinity support neither
// lock the thread nor bind anything, and return nil unconditionally.
func Pin(numaNode, cpuID int) error {
	return platformPin(numaNode, cpuID)
}

// Unpin releases any affinity set by Pin and, on Linux and Windows, calls
// runtime.UnlockOSThread.
func Unpin() error {
	return platformUnpin()
}

// NodeCount returns the number of NUMA nodes visible to this process, or 1
// on platforms without NUMA support.
func NodeCount() int {
	n := platformNodeCount()
	if n < 1 {
		return 1
	}
	return n
}

// CPUForNode suggests a CPU core index to pair with numaNode when the
// caller has no more specific preference.
func CPUForNode(numaNode int) int {
	return platformCPUForNode(numaNode)
}

// NodeForWorker assigns worker index i to a NUMA node by simple round
// robin, per the fixed "worker i -> node i mod numNodes" policy.
func NodeForWorker(i int) int {
	n := NodeCount()
	if n <= 0 {
		return 0
	}
	return i % n
}
