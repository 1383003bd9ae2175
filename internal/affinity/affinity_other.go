//go:build !linux && !windows

package affinity

func platformNodeCount() int                { return 1 }
func platformCPUForNode(numaNode int) int   { return 0 }
func platformPin(numaNode, cpuID int) error { return nil }
func platformUnpin() error                  { return nil }
