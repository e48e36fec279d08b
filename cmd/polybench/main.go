// Command polybench drives polyindex containers through the Person workloads
// and reports throughput.
//
//	polybench -size 10000 -workload all
//	polybench -workload mixed -readers 8 -qps 2000 -duration 10s -metrics-addr :2112
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/hupe1980/polyindex"
	"github.com/hupe1980/polyindex/promcollector"
	"github.com/hupe1980/polyindex/testutil"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

var (
	size        = flag.Int("size", 10_000, "Number of persons")
	lookups     = flag.Int("lookups", 100_000, "Lookups per lookup workload")
	mods        = flag.Int("mods", 1_000, "Modifications for the modify workload")
	readers     = flag.Int("readers", 4, "Concurrent readers in the mixed workload")
	qps         = flag.Int("qps", 1_000, "Target writes per second in the mixed workload")
	duration    = flag.Duration("duration", 5*time.Second, "Duration of the mixed workload")
	seed        = flag.Int64("seed", 4711, "Random seed")
	workload    = flag.String("workload", "all", "Workload: insert, lookup-id, lookup-email, range-age, modify, mixed or all")
	logLevel    = flag.String("log-level", "warn", "Log level: debug, info, warn or error")
	metricsAddr = flag.String("metrics-addr", "", "Serve Prometheus metrics on this address, e.g. :2112")
)

var workloads = []struct {
	name string
	run  func(ctx context.Context, b *bench) (result, error)
}{
	{"insert", runInsert},
	{"lookup-id", runLookupID},
	{"lookup-email", runLookupEmail},
	{"range-age", runRangeAge},
	{"modify", runModify},
	{"mixed", runMixed},
}

type result struct {
	ops     int64
	elapsed time.Duration
	extra   string
}

type bench struct {
	persons []testutil.Person
	rng     *testutil.RNG
	opts    []polyindex.Option
	logger  *polyindex.Logger
}

func main() {
	flag.Parse()

	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "polybench:", err)
		os.Exit(1)
	}
}

func run() error {
	if *size <= 0 {
		return fmt.Errorf("-size must be positive, got %d", *size)
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(*logLevel)); err != nil {
		return fmt.Errorf("invalid -log-level %q: %w", *logLevel, err)
	}
	logger := polyindex.NewTextLogger(level)

	b := &bench{
		persons: testutil.GeneratePersons(*size),
		rng:     testutil.NewRNG(*seed),
		opts:    []polyindex.Option{polyindex.WithLogger(logger), polyindex.WithCapacity(*size)},
		logger:  logger,
	}

	if *metricsAddr != "" {
		reg := prometheus.NewRegistry()
		b.opts = append(b.opts, polyindex.WithMetricsCollector(promcollector.New(reg)))

		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		go func() {
			logger.Info("serving metrics", "addr", *metricsAddr)
			if err := http.ListenAndServe(*metricsAddr, mux); err != nil {
				logger.Error("metrics server", "error", err)
			}
		}()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	selected := strings.Split(*workload, ",")
	ran := 0
	for _, w := range workloads {
		if *workload != "all" && !contains(selected, w.name) {
			continue
		}
		ran++

		res, err := w.run(ctx, b)
		if err != nil {
			return fmt.Errorf("%s: %w", w.name, err)
		}
		fmt.Printf("%-13s %10d ops %12s %14.0f ops/s  %s\n",
			w.name, res.ops, res.elapsed.Round(time.Microsecond),
			float64(res.ops)/res.elapsed.Seconds(), res.extra)

		if ctx.Err() != nil {
			break
		}
	}
	if ran == 0 {
		return fmt.Errorf("unknown workload %q", *workload)
	}
	return nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if strings.TrimSpace(v) == s {
			return true
		}
	}
	return false
}

func (b *bench) populate() (*polyindex.Container[testutil.Person], error) {
	return testutil.PopulateContainer(b.persons, b.opts...)
}

func runInsert(_ context.Context, b *bench) (result, error) {
	start := time.Now()
	c, err := b.populate()
	if err != nil {
		return result{}, err
	}
	elapsed := time.Since(start)

	if err := c.Check(); err != nil {
		return result{}, err
	}
	return result{ops: int64(c.Len()), elapsed: elapsed, extra: fmt.Sprintf("indexes=%d", len(c.Indexes()))}, nil
}

func runLookupID(_ context.Context, b *bench) (result, error) {
	c, err := b.populate()
	if err != nil {
		return result{}, err
	}
	byID, err := polyindex.OrderedBy[int](c, testutil.IndexID)
	if err != nil {
		return result{}, err
	}
	ids := b.rng.Ints(*lookups, len(b.persons))

	start := time.Now()
	hits, sum := 0, 0
	for _, id := range ids {
		if _, p, ok := byID.FindOne(id); ok {
			hits++
			sum += p.Age
		}
	}
	return result{ops: int64(len(ids)), elapsed: time.Since(start), extra: fmt.Sprintf("hits=%d age_sum=%d", hits, sum)}, nil
}

func runLookupEmail(_ context.Context, b *bench) (result, error) {
	c, err := b.populate()
	if err != nil {
		return result{}, err
	}
	byEmail, err := polyindex.HashedBy[string](c, testutil.IndexEmail)
	if err != nil {
		return result{}, err
	}

	emails := make([]string, *lookups)
	for i, idx := range b.rng.Ints(*lookups, len(b.persons)) {
		emails[i] = b.persons[idx].Email
	}

	start := time.Now()
	hits, sum := 0, 0
	for _, email := range emails {
		if _, p, ok := byEmail.Find(email); ok {
			hits++
			sum += p.Age
		}
	}
	return result{ops: int64(len(emails)), elapsed: time.Since(start), extra: fmt.Sprintf("hits=%d age_sum=%d", hits, sum)}, nil
}

func runRangeAge(_ context.Context, b *bench) (result, error) {
	c, err := b.populate()
	if err != nil {
		return result{}, err
	}
	byAge, err := polyindex.OrderedBy[int](c, testutil.IndexAge)
	if err != nil {
		return result{}, err
	}

	windows := [][2]int{{20, 30}, {30, 40}, {40, 50}, {50, 60}, {60, 70}}
	rounds := max(*lookups/len(windows), 1)

	start := time.Now()
	total := 0
	for range rounds {
		for _, w := range windows {
			for range byAge.Range(polyindex.Inclusive(w[0]), polyindex.Inclusive(w[1])) {
				total++
			}
		}
	}
	return result{
		ops:     int64(rounds * len(windows)),
		elapsed: time.Since(start),
		extra:   fmt.Sprintf("records_per_round=%d", total/rounds),
	}, nil
}

func runModify(_ context.Context, b *bench) (result, error) {
	c, err := b.populate()
	if err != nil {
		return result{}, err
	}
	byID, err := polyindex.OrderedBy[int](c, testutil.IndexID)
	if err != nil {
		return result{}, err
	}
	ids := b.rng.Ints(*mods, len(b.persons))

	start := time.Now()
	updated := 0
	for _, id := range ids {
		ref, _, ok := byID.FindOne(id)
		if !ok {
			continue
		}
		name := "Modified" + strconv.Itoa(b.rng.Intn(1000))
		city := "NewCity" + strconv.Itoa(b.rng.Intn(1000))
		outcome, err := c.Modify(ref, func(p *testutil.Person) {
			p.Name = name
			p.City = city
		})
		if err != nil {
			return result{}, err
		}
		if outcome == polyindex.OutcomeUpdated {
			updated++
		}
	}
	elapsed := time.Since(start)

	if err := c.Check(); err != nil {
		return result{}, err
	}
	return result{ops: int64(len(ids)), elapsed: elapsed, extra: fmt.Sprintf("updated=%d", updated)}, nil
}

// hotKeys bounds the ids readers draw from, skewed towards the low ids.
const hotKeys = 512

// runMixed runs readers against a rate-limited writer through Locked. The
// writer renames persons, moves ids (which may collide and erase) and
// re-inserts what it lost.
func runMixed(ctx context.Context, b *bench) (result, error) {
	c, err := b.populate()
	if err != nil {
		return result{}, err
	}
	shared := polyindex.NewLocked(c)

	ctx, cancel := context.WithTimeout(ctx, *duration)
	defer cancel()

	var reads, writes, erased, reinserted atomic.Int64
	limiter := rate.NewLimiter(rate.Limit(*qps), max(*qps/100, 1))

	start := time.Now()
	g, ctx := errgroup.WithContext(ctx)
	for r := range *readers {
		rng := testutil.NewRNG(*seed + int64(r) + 1)
		g.Go(func() error {
			for ctx.Err() == nil {
				id := rng.Zipf(min(len(b.persons), hotKeys), 1.1)
				err := shared.View(func(c *polyindex.Container[testutil.Person]) error {
					byID, err := polyindex.OrderedBy[int](c, testutil.IndexID)
					if err != nil {
						return err
					}
					_, _, _ = byID.FindOne(id)
					return nil
				})
				if err != nil {
					return err
				}
				reads.Add(1)
			}
			return nil
		})
	}

	g.Go(func() error {
		rng := testutil.NewRNG(*seed)
		for {
			if err := limiter.Wait(ctx); err != nil {
				return nil // deadline reached
			}
			id := rng.Intn(len(b.persons))
			err := shared.Update(func(c *polyindex.Container[testutil.Person]) error {
				byID, err := polyindex.OrderedBy[int](c, testutil.IndexID)
				if err != nil {
					return err
				}
				ref, _, ok := byID.FindOne(id)
				if !ok {
					if _, err := c.Insert(b.persons[id]); err == nil {
						reinserted.Add(1)
					}
					return nil
				}

				target := rng.Intn(len(b.persons))
				outcome, err := c.Modify(ref, func(p *testutil.Person) { p.ID = target })
				if outcome == polyindex.OutcomeErased {
					erased.Add(1)
					return nil
				}
				if err != nil && !errors.Is(err, polyindex.ErrDuplicateKey) {
					return err
				}
				return nil
			})
			if err != nil {
				return err
			}
			writes.Add(1)
		}
	})

	if err := g.Wait(); err != nil {
		return result{}, err
	}
	elapsed := time.Since(start)

	var size int
	if err := shared.View(func(c *polyindex.Container[testutil.Person]) error {
		size = c.Len()
		return c.Check()
	}); err != nil {
		return result{}, err
	}

	b.logger.Debug("mixed workload done", "reads", reads.Load(), "writes", writes.Load())
	return result{
		ops:     reads.Load() + writes.Load(),
		elapsed: elapsed,
		extra: fmt.Sprintf("reads=%d writes=%d erased=%d reinserted=%d size=%d",
			reads.Load(), writes.Load(), erased.Load(), reinserted.Load(), size),
	}, nil
}
