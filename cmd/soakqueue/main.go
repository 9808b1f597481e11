// soakqueue hammers the concurrent queues with configurable producer and
// consumer counts, verifies that nothing was lost or duplicated, and records
// every run in a SQLite table so regressions show up across checkouts.  Each
// run also prints one JSON summary line to stdout.
//
// Usage:
//
//	soakqueue -queue mpmc -producers 4 -consumers 4 -items 1000000 -db soak.db
package main

import (
	"database/sql"
	"flag"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/sugawarayuuta/sonnet"

	"github.com/codewanderer42820/unmanaged/debug"
	"github.com/codewanderer42820/unmanaged/mpmc"
	"github.com/codewanderer42820/unmanaged/mpsc"
	"github.com/codewanderer42820/unmanaged/spsc"
	"github.com/codewanderer42820/unmanaged/utils"
)

const schema = `CREATE TABLE IF NOT EXISTS soak_runs (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	started_at TEXT NOT NULL,
	queue TEXT NOT NULL,
	producers INTEGER NOT NULL,
	consumers INTEGER NOT NULL,
	items INTEGER NOT NULL,
	drained INTEGER NOT NULL,
	checksum_ok INTEGER NOT NULL,
	elapsed_ns INTEGER NOT NULL,
	ns_per_op REAL NOT NULL
)`

type runResult struct {
	Queue      string  `json:"queue"`
	Producers  int     `json:"producers"`
	Consumers  int     `json:"consumers"`
	Items      int     `json:"items"`
	Drained    int     `json:"drained"`
	ChecksumOK bool    `json:"checksum_ok"`
	ElapsedNs  int64   `json:"elapsed_ns"`
	NsPerOp    float64 `json:"ns_per_op"`
}

func main() {
	queue := flag.String("queue", "mpmc", "queue under soak: spsc, mpsc or mpmc")
	producers := flag.Int("producers", 4, "producer goroutines (forced to 1 for spsc)")
	consumers := flag.Int("consumers", 4, "consumer goroutines (forced to 1 for spsc/mpsc)")
	items := flag.Int("items", 1_000_000, "total elements pushed through the queue")
	dbPath := flag.String("db", "soak.db", "sqlite file for run records")
	flag.Parse()

	res, err := run(*queue, *producers, *consumers, *items)
	if err != nil {
		debug.DropError("soakqueue", err)
		os.Exit(1)
	}

	if err := record(*dbPath, res); err != nil {
		debug.DropError("soakqueue: record", err)
		os.Exit(1)
	}

	line, err := sonnet.Marshal(res)
	if err != nil {
		debug.DropError("soakqueue: marshal", err)
		os.Exit(1)
	}
	fmt.Println(string(line))

	if !res.ChecksumOK || res.Drained != res.Items {
		debug.DropMessage("soakqueue", "FAILED: element loss or duplication detected")
		debug.DropJSON("soakqueue: failing run", res)
		os.Exit(1)
	}
}

func run(queue string, producers, consumers, items int) (runResult, error) {
	switch queue {
	case "spsc":
		producers, consumers = 1, 1
	case "mpsc":
		consumers = 1
	case "mpmc":
	default:
		return runResult{}, fmt.Errorf("unknown queue kind %q", queue)
	}
	if producers < 1 || consumers < 1 || items < 1 {
		return runResult{}, fmt.Errorf("producers, consumers and items must be positive")
	}

	// Every pushed value is Mix64(i); both sides fold values with XOR, so a
	// zero difference after the drain means no loss and no duplication.
	var pushSum, popSum, drained atomic.Uint64
	start := time.Now()

	switch queue {
	case "spsc":
		p, c := spsc.NewWith[uint64](4096, spsc.Backoff{})
		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			var sum uint64
			for i := 0; i < items; i++ {
				v := utils.Mix64(uint64(i))
				p.Enqueue(v)
				sum ^= v
			}
			pushSum.Store(sum)
		}()
		var sum uint64
		for i := 0; i < items; i++ {
			sum ^= c.Dequeue()
		}
		popSum.Store(sum)
		drained.Store(uint64(items))
		wg.Wait()

	case "mpsc":
		q := mpsc.New[uint64]()
		soakProduce(q.Enqueue, producers, items, &pushSum)
		var sum uint64
		n := 0
		for n < items {
			if v, ok := q.TryDequeue(); ok {
				sum ^= v
				n++
			}
		}
		popSum.Store(sum)
		drained.Store(uint64(n))

	case "mpmc":
		q := mpmc.New[uint64]()
		soakProduce(q.Enqueue, producers, items, &pushSum)
		var wg sync.WaitGroup
		for c := 0; c < consumers; c++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				var sum uint64
				for int(drained.Load()) < items {
					if v, ok := q.TryDequeue(); ok {
						sum ^= v
						drained.Add(1)
					}
				}
				for { // fold this consumer's sum into the shared XOR
					old := popSum.Load()
					if popSum.CompareAndSwap(old, old^sum) {
						break
					}
				}
			}()
		}
		wg.Wait()
	}

	elapsed := time.Since(start)
	return runResult{
		Queue:      queue,
		Producers:  producers,
		Consumers:  consumers,
		Items:      items,
		Drained:    int(drained.Load()),
		ChecksumOK: pushSum.Load() == popSum.Load(),
		ElapsedNs:  elapsed.Nanoseconds(),
		NsPerOp:    float64(elapsed.Nanoseconds()) / float64(items),
	}, nil
}

// soakProduce launches the producer goroutines, each pushing a disjoint
// index range, and blocks until all values are in flight.
func soakProduce(enqueue func(uint64), producers, items int, pushSum *atomic.Uint64) {
	var wg sync.WaitGroup
	per := items / producers
	for p := 0; p < producers; p++ {
		lo, hi := p*per, (p+1)*per
		if p == producers-1 {
			hi = items
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			var sum uint64
			for i := lo; i < hi; i++ {
				v := utils.Mix64(uint64(i))
				enqueue(v)
				sum ^= v
			}
			for {
				old := pushSum.Load()
				if pushSum.CompareAndSwap(old, old^sum) {
					break
				}
			}
		}()
	}
	wg.Wait()
}

func record(path string, res runResult) error {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return err
	}
	defer db.Close()

	if _, err := db.Exec(schema); err != nil {
		return err
	}
	_, err = db.Exec(
		`INSERT INTO soak_runs
		 (started_at, queue, producers, consumers, items, drained, checksum_ok, elapsed_ns, ns_per_op)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		time.Now().UTC().Format(time.RFC3339), res.Queue, res.Producers,
		res.Consumers, res.Items, res.Drained, res.ChecksumOK,
		res.ElapsedNs, res.NsPerOp)
	return err
}
