// gated-loadtest measures decision throughput of the access engine. It seeds
// durable device tokens, then drives edge and client evaluations from
// concurrent workers and reports latency percentiles.
package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"net/url"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	routegate "github.com/shopfront/routegate"
	"github.com/shopfront/routegate/session"
)

var samplePaths = []string{
	"/",
	"/products",
	"/products/sku-123",
	"/auth/login",
	"/admin",
	"/admin/orders",
	"/orders",
	"/cart",
	"/profile",
	"/unknown/page",
}

func main() {
	var (
		devices     = flag.Int("devices", 10000, "number of device tokens to seed")
		concurrency = flag.Int("concurrency", 256, "number of concurrent workers")
		ops         = flag.Int("ops", 500000, "operations per phase (edge + client)")
		redisAddr   = flag.String("redis-addr", "", "redis address; if empty, REDIS_ADDR env or miniredis is used")
	)
	flag.Parse()

	if *devices <= 0 || *concurrency <= 0 || *ops <= 0 {
		fmt.Fprintln(os.Stderr, "devices, concurrency, and ops must be > 0")
		os.Exit(2)
	}

	ctx := context.Background()

	addr := *redisAddr
	if addr == "" {
		addr = os.Getenv("REDIS_ADDR")
	}

	var cleanup func()
	if addr == "" {
		mr, err := miniredis.Run()
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to start miniredis: %v\n", err)
			os.Exit(1)
		}
		addr = mr.Addr()
		cleanup = mr.Close
		fmt.Printf("using miniredis at %s\n", addr)
	} else {
		cleanup = func() {}
		fmt.Printf("using redis at %s\n", addr)
	}
	defer cleanup()

	client := redis.NewClient(&redis.Options{Addr: addr})
	defer client.Close()

	engine, err := routegate.New().WithRedis(client).Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "build engine: %v\n", err)
		os.Exit(1)
	}
	defer engine.Close()

	fmt.Printf("seeding %d device tokens...\n", *devices)
	startSeed := time.Now()
	store := engine.DurableStore()
	for i := 0; i < *devices; i++ {
		if err := store.Save(ctx, fmt.Sprintf("device-%d", i)); err != nil {
			fmt.Fprintf(os.Stderr, "seed failed: %v\n", err)
			os.Exit(1)
		}
	}
	fmt.Printf("seeded in %s\n", time.Since(startSeed).Round(time.Millisecond))

	edgeStats := runEdgePhase(ctx, engine, *ops, *concurrency)
	clientStats := runClientPhase(ctx, engine, *ops, *concurrency)

	fmt.Println("---- results ----")
	printStats("edge", edgeStats)
	printStats("client", clientStats)
}

func runEdgePhase(ctx context.Context, engine *routegate.Engine, ops, concurrency int) phaseStats {
	adminCookie := url.QueryEscape(`{"id":"u1","role":"admin"}`)
	userCookie := url.QueryEscape(`{"id":"u2","role":"customer"}`)

	signals := []routegate.EdgeSignals{
		{},
		{Token: "tok-anon"},
		{Token: "tok-user", RawUser: userCookie},
		{Token: "tok-admin", RawUser: adminCookie},
		{RawUser: "not json"},
	}

	return runPhase(ops, concurrency, func(r *rand.Rand) {
		path := samplePaths[r.Intn(len(samplePaths))]
		sig := signals[r.Intn(len(signals))]
		engine.EvaluateEdge(ctx, path, sig)
	})
}

func runClientPhase(ctx context.Context, engine *routegate.Engine, ops, concurrency int) phaseStats {
	admin := &session.UserRecord{ID: "u1", Role: session.RoleAdmin}
	customer := &session.UserRecord{ID: "u2", Role: "customer"}

	states := []session.State{
		{},
		{IsLoading: true},
		{HasAnyToken: true, HasAnyAuthSignal: true},
		{IsAuthenticated: true, HasAnyToken: true, HasAnyAuthSignal: true, User: customer},
		{IsAuthenticated: true, IsAdmin: true, HasAnyToken: true, HasAnyAuthSignal: true, User: admin},
	}

	return runPhase(ops, concurrency, func(r *rand.Rand) {
		path := samplePaths[r.Intn(len(samplePaths))]
		st := states[r.Intn(len(states))]
		engine.EvaluateClient(ctx, path, st)
	})
}

func runPhase(ops, concurrency int, op func(*rand.Rand)) phaseStats {
	var (
		wg        sync.WaitGroup
		cursor    int64
		latencies = make([]time.Duration, 0, ops)
		mu        sync.Mutex
	)

	start := time.Now()
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			r := rand.New(rand.NewSource(time.Now().UnixNano() + int64(worker)*7919))
			for {
				i := int(atomic.AddInt64(&cursor, 1)) - 1
				if i >= ops {
					return
				}
				t0 := time.Now()
				op(r)
				d := time.Since(t0)
				mu.Lock()
				latencies = append(latencies, d)
				mu.Unlock()
			}
		}(w)
	}
	wg.Wait()
	total := time.Since(start)
	return computeStats(total, latencies)
}

type phaseStats struct {
	total   time.Duration
	ops     int
	p50     time.Duration
	p95     time.Duration
	p99     time.Duration
	opsPerS float64
}

func computeStats(total time.Duration, samples []time.Duration) phaseStats {
	if len(samples) == 0 {
		return phaseStats{total: total}
	}
	sort.Slice(samples, func(i, j int) bool { return samples[i] < samples[j] })
	return phaseStats{
		total:   total,
		ops:     len(samples),
		p50:     percentile(samples, 50),
		p95:     percentile(samples, 95),
		p99:     percentile(samples, 99),
		opsPerS: float64(len(samples)) / total.Seconds(),
	}
}

func percentile(samples []time.Duration, p int) time.Duration {
	if len(samples) == 0 {
		return 0
	}
	if p <= 0 {
		return samples[0]
	}
	if p >= 100 {
		return samples[len(samples)-1]
	}
	idx := (len(samples) - 1) * p / 100
	return samples[idx]
}

func printStats(name string, s phaseStats) {
	fmt.Printf("%s: ops=%d total=%s ops/sec=%.0f p50=%s p95=%s p99=%s\n",
		name,
		s.ops,
		s.total.Round(time.Millisecond),
		s.opsPerS,
		s.p50.Round(time.Microsecond),
		s.p95.Round(time.Microsecond),
		s.p99.Round(time.Microsecond),
	)
}
