// Command grid-stress floods a running display with randomized protocol
// traffic. It exercises coalescing, backpressure, and widget churn by mixing
// text, bar, and ring messages across the whole layout.
//
// Usage:
//
//	go run ./cmd/grid-stress
//	go run ./cmd/grid-stress -addr 127.0.0.1:9001 -rate 5000 -duration 30s
package main

import (
	"flag"
	"fmt"
	"math/rand"
	"net"
	"os"
	"time"

	"github.com/patchgrid/patchgrid/pkg/grid"
)

func main() {
	addr := flag.String("addr", "127.0.0.1:9001", "display address")
	rate := flag.Int("rate", 1000, "messages per second")
	duration := flag.Duration("duration", 10*time.Second, "how long to run")
	seed := flag.Int64("seed", time.Now().UnixNano(), "random seed")
	flag.Parse()

	if err := run(*addr, *rate, *duration, *seed); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(addr string, rate int, duration time.Duration, seed int64) error {
	conn, err := net.Dial("udp", addr)
	if err != nil {
		return fmt.Errorf("dialing %s: %w", addr, err)
	}
	defer conn.Close()

	rng := rand.New(rand.NewSource(seed))
	layout := grid.ReferenceLayout()

	interval := time.Second / time.Duration(rate)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	deadline := time.Now().Add(duration)

	sent := 0
	for range ticker.C {
		if time.Now().After(deadline) {
			break
		}
		if _, err := conn.Write([]byte(randomMessage(rng, layout))); err != nil {
			return fmt.Errorf("sending: %w", err)
		}
		sent++
	}

	fmt.Printf("sent %d messages to %s (seed %d)\n", sent, addr, seed)
	return nil
}

var palette = []string{"#ff5f5f", "#5fff5f", "#5f5fff", "#ffff5f", "#ff5fff", "#5fffff", "#ffffff"}

var words = []string{"vol", "cutoff", "res", "attack", "decay", "mix", "rate", "depth", "wave", "sync"}

// randomMessage picks a random cell and emits one protocol line for it.
// Gauge traffic dominates, like a patch sweeping controls; SETs and BGs churn
// widget modes at a lower rate.
func randomMessage(rng *rand.Rand, layout grid.Layout) string {
	row := rng.Intn(layout.Rows())
	col := rng.Intn(layout.Columns[row])
	value := rng.Intn(128)

	switch rng.Intn(10) {
	case 0:
		return fmt.Sprintf("%d %d %s #000000 %s", col, row, palette[rng.Intn(len(palette))], words[rng.Intn(len(words))])
	case 1:
		return fmt.Sprintf("BG %d %d %s", row, col, palette[rng.Intn(len(palette))])
	case 2:
		return fmt.Sprintf("ALIGN %d %d %s", row, col, []string{"l", "c", "r"}[rng.Intn(3)])
	case 3:
		return fmt.Sprintf("RINGVAL %d %d %d %d", col, row, value, rng.Intn(128))
	case 4:
		return fmt.Sprintf("RING %d %d %s %s #000000 260 10 30", col, row, palette[rng.Intn(len(palette))], palette[rng.Intn(len(palette))])
	case 5:
		return fmt.Sprintf("ARC %d %d %d %d", col, row, value, rng.Intn(128))
	default:
		return fmt.Sprintf("BAR %d %d %d", row, col, value)
	}
}
