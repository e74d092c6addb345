// Demo of one arena serving a loop of short-lived units of work.
//
//	go run ./example
package main

import (
	"fmt"
	"time"

	arena "github.com/memkit/arena"
)

func main() {
	a, err := arena.New(arena.Options{Capacity: 1 << 16, Backing: arena.MmapBacking{}})
	if err != nil {
		panic(err)
	}
	defer a.Release()

	for frame := 0; frame < 3; frame++ {
		started, allocErr := arena.AllocValue(a, time.Now())
		if allocErr != nil {
			panic(allocErr)
		}

		buf := arena.NewBuffer(a)
		fmt.Fprintf(buf, "frame %d started at %v", frame, started.Format(time.RFC3339))
		fmt.Println(buf.String())
		fmt.Printf("before rewind: %v\n", a.Metrics().HumanString())

		a.ResetUnchecked()
	}
	fmt.Printf("after rewind: %v\n", a.Metrics().HumanString())
}
