// Command matrixdemo is an illustrative consumer of the scheduler: it
// builds its own facade.Scheduler from the command-line flags, partitions
// a row-blocked matrix multiply across it, waits on a completion counter
// for the result, and closes the scheduler on exit.
//
// Grounded on multiply_matrices/main in
// _examples/original_source/system_scheduler/scheduler.cpp, translated
// from a fixed-size row-block loop with a manual scheduler.schedule call
// per block into one facade.Scheduler.BulkSchedule call, and on the
// urfave/cli/v2 command layout used across the retrieval pack for
// argument parsing.
package main

import (
	"fmt"
	"log"
	"math"
	"os"
	"sync/atomic"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/chasework/scheduler/api"
	"github.com/chasework/scheduler/facade"
)

func main() {
	app := &cli.App{
		Name:  "matrixdemo",
		Usage: "multiply two all-ones NxN matrices across the work-stealing scheduler",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "size", Value: 500, Usage: "matrix dimension N"},
			&cli.IntFlag{Name: "workers", Value: 0, Usage: "worker count (0 = runtime.NumCPU())"},
			&cli.BoolFlag{Name: "pin", Value: false, Usage: "enable NUMA/CPU pinning"},
		},
		Action: run,
	}
	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func run(c *cli.Context) error {
	size := c.Int("size")
	if size <= 0 {
		return fmt.Errorf("size must be positive, got %d", size)
	}

	sched, err := facade.New(facade.Config{
		Workers:         c.Int("workers"),
		PinEnabled:      c.Bool("pin"),
		DefaultPriority: api.Normal,
	})
	if err != nil {
		return err
	}
	defer sched.Close()

	a := onesMatrix(size)
	b := onesMatrix(size)
	result := multiply(sched, a, b)

	printCorner(result, "C", 5, 5)
	return nil
}

func onesMatrix(n int) [][]int {
	m := make([][]int, n)
	for i := range m {
		m[i] = make([]int, n)
		for j := range m[i] {
			m[i][j] = 1
		}
	}
	return m
}

// multiply mirrors the original's block-per-thread partitioning, but
// expressed as a single BulkSchedule over row indices instead of a
// hand-written chunk loop; an atomic row counter signals completion. Each
// product term is weighted by sin(a[i][k]) to add floating-point work, so
// for all-ones inputs every entry of C is inner*sin(1) truncated to an
// int, not inner.
func multiply(sched api.Scheduler, a, b [][]int) [][]int {
	rows := len(a)
	cols := len(b[0])
	inner := len(a[0])

	c := make([][]int, rows)
	for i := range c {
		c[i] = make([]int, cols)
	}

	var remaining atomic.Int64
	remaining.Store(int64(rows))
	done := make(chan struct{})

	sched.BulkSchedule(rows, func(i int) {
		for j := 0; j < cols; j++ {
			var sum float64
			for k := 0; k < inner; k++ {
				sum += float64(a[i][k]) * float64(b[k][j]) * math.Sin(float64(a[i][k]))
			}
			c[i][j] = int(sum)
		}
		if remaining.Add(-1) == 0 {
			close(done)
		}
	}, api.Normal)

	select {
	case <-done:
	case <-time.After(time.Minute):
	}
	return c
}

func printCorner(m [][]int, name string, maxRows, maxCols int) {
	fmt.Printf("Matrix %s (top-left %dx%d portion):\n", name, maxRows, maxCols)
	rows := min(maxRows, len(m))
	for i := 0; i < rows; i++ {
		cols := min(maxCols, len(m[i]))
		for j := 0; j < cols; j++ {
			fmt.Printf("%d\t", m[i][j])
		}
		fmt.Println()
	}
}
