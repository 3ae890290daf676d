package main

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	goAudit "github.com/MrEthical07/goAudit"
	"github.com/MrEthical07/goAudit/address"
	"github.com/MrEthical07/goAudit/guid"
	"github.com/MrEthical07/goAudit/metrics/export/prometheus"
	"github.com/MrEthical07/goAudit/sid"
	"github.com/MrEthical07/goAudit/stream"
	"github.com/alicebob/miniredis/v2"
	"github.com/lmittmann/tint"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/pflag"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		concurrency int
		events      int
		redisAddr   string
		async       bool
		sealEvents  bool
		debug       bool
		metrics     bool
	)

	flagSet := pflag.NewFlagSet("goaudit-loadtest", pflag.ContinueOnError)
	flagSet.IntVarP(&concurrency, "concurrency", "c", 64, "number of concurrent workers")
	flagSet.IntVarP(&events, "events", "n", 100000, "authentication events to emit")
	flagSet.StringVar(&redisAddr, "redis-addr", "", "redis address; if empty, REDIS_ADDR env or miniredis is used")
	flagSet.BoolVar(&async, "async", true, "queue events through the dispatcher")
	flagSet.BoolVar(&sealEvents, "seal", false, "sign every event with a throwaway ed25519 key")
	flagSet.BoolVar(&debug, "debug", false, "enable debug logging")
	flagSet.BoolVar(&metrics, "metrics", false, "print prometheus metrics after the run")

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}
	if concurrency <= 0 || events <= 0 {
		return errors.New("concurrency and events must be > 0")
	}

	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	logger := slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
	}))

	cfg, err := goAudit.LoadConfig()
	if err != nil {
		return err
	}
	cfg.Dispatch.Enabled = async
	cfg.Dispatch.DropIfFull = false
	cfg.Metrics.EnableLatencyHistograms = cfg.Metrics.Enabled
	if sealEvents {
		_, priv, err := ed25519.GenerateKey(rand.Reader)
		if err != nil {
			return fmt.Errorf("generate seal key: %w", err)
		}
		cfg.Seal.Enabled = true
		cfg.Seal.PrivateKey = priv
	}

	client, cleanup, err := connect(redisAddr, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	emitter, err := goAudit.New().
		WithConfig(cfg).
		WithRedis(client).
		WithLogger(logger).
		Build()
	if err != nil {
		return err
	}

	ctx := context.Background()
	stats := runEmitPhase(ctx, emitter, events, concurrency)
	emitter.Close()

	streams := stream.NewRedisSink(client, cfg.Stream.Prefix, 0, false)
	stored, err := streams.Len(ctx, "Authentication")
	if err != nil {
		return err
	}

	logger.Info("load test finished",
		slog.Int("events", stats.ops),
		slog.Int64("failures", stats.failures),
		slog.Int64("stored", stored),
		slog.Uint64("dropped", emitter.Dropped()),
	)
	printStats("send", stats)

	if metrics {
		fmt.Print(prometheus.NewPrometheusExporter(emitter).Render())
	}
	return nil
}

func connect(addr string, logger *slog.Logger) (redis.UniversalClient, func(), error) {
	if addr == "" {
		addr = os.Getenv("REDIS_ADDR")
	}
	if addr != "" {
		client := redis.NewUniversalClient(&redis.UniversalOptions{
			Addrs: []string{addr},
		})
		logger.Info("using redis", slog.String("addr", addr))
		return client, func() { _ = client.Close() }, nil
	}

	mr, err := miniredis.Run()
	if err != nil {
		return nil, nil, fmt.Errorf("start miniredis: %w", err)
	}
	client := redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs: []string{mr.Addr()},
	})
	logger.Info("using miniredis", slog.String("addr", mr.Addr()))
	return client, func() {
		_ = client.Close()
		mr.Close()
	}, nil
}

var (
	userSID   = sid.MustParse("S-1-5-21-2212615479-2695158682-2101375467-1103")
	domainSID = sid.MustParse("S-1-5-21-2212615479-2695158682-2101375467")
	remote    = mustInet("2001:db8::1:0:0:1", 49152)
	local     = mustInet("192.0.2.10", 389)
)

func mustInet(host string, port uint16) *address.Address {
	a, err := address.NewInet(host, port)
	if err != nil {
		panic(err)
	}
	return a
}

// authenticationEvent builds the same shape of event a domain controller
// logs for an NTLM or Kerberos logon.
func authenticationEvent(e *goAudit.Emitter, i int) *goAudit.Document {
	auth := e.NewObject()
	auth.AddVersion(1, 2)
	auth.AddString("eventId", goAudit.String("4624"))
	auth.AddString("status", goAudit.String("NT_STATUS_OK"))
	auth.AddAddress("localAddress", local)
	auth.AddAddress("remoteAddress", remote)
	auth.AddString("serviceDescription", goAudit.String("LDAP"))
	auth.AddString("authDescription", goAudit.String("simple bind"))
	auth.AddString("clientDomain", goAudit.String("EXAMPLE"))
	auth.AddString("clientAccount", goAudit.String(fmt.Sprintf("user%d", i)))
	auth.AddString("workstation", nil)
	auth.AddSID("becameSid", userSID)
	auth.AddSID("domainSid", domainSID)
	session := guid.New()
	auth.AddGUID("sessionId", &session)
	auth.AddStringN("passwordType", goAudit.String("NTLMv2"), 32)
	auth.AddInt("logonType", 3)

	doc := e.NewObject()
	doc.AddTimestamp()
	doc.AddString("type", goAudit.String("Authentication"))
	doc.AddObject("Authentication", auth)
	return doc
}

func runEmitPhase(ctx context.Context, emitter *goAudit.Emitter, ops, concurrency int) phaseStats {
	var (
		wg        sync.WaitGroup
		cursor    int64
		failures  int64
		latencies = make([]time.Duration, 0, ops)
		mu        sync.Mutex
	)

	start := time.Now()
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				i := int(atomic.AddInt64(&cursor, 1)) - 1
				if i >= ops {
					return
				}
				t0 := time.Now()
				err := emitter.Send(ctx, "Authentication", authenticationEvent(emitter, i))
				d := time.Since(t0)
				if err != nil {
					atomic.AddInt64(&failures, 1)
				}
				mu.Lock()
				latencies = append(latencies, d)
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	return computeStats(time.Since(start), latencies, failures)
}

type phaseStats struct {
	total    time.Duration
	ops      int
	failures int64
	p50      time.Duration
	p95      time.Duration
	p99      time.Duration
	opsPerS  float64
}

func computeStats(total time.Duration, samples []time.Duration, failures int64) phaseStats {
	if len(samples) == 0 {
		return phaseStats{total: total}
	}
	sort.Slice(samples, func(i, j int) bool { return samples[i] < samples[j] })
	return phaseStats{
		total:    total,
		ops:      len(samples),
		failures: failures,
		p50:      percentile(samples, 50),
		p95:      percentile(samples, 95),
		p99:      percentile(samples, 99),
		opsPerS:  float64(len(samples)) / total.Seconds(),
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
	fmt.Printf("%s: ops=%d failures=%d total=%s ops/sec=%.0f p50=%s p95=%s p99=%s\n",
		name,
		s.ops,
		s.failures,
		s.total.Round(time.Millisecond),
		s.opsPerS,
		s.p50.Round(time.Microsecond),
		s.p95.Round(time.Microsecond),
		s.p99.Round(time.Microsecond),
	)
}
