package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net"
	"net/http"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

const (
	baseURL      = "http://127.0.0.1:18090"
	numWorkers   = 50
	testDuration = 10 * time.Second
	numPosts     = 500
	numUsers     = 5
)

var userKeys = []string{"s_alpha", "s_beta", "s_gamma", "s_delta", "s_epsilon"}

var httpClient = &http.Client{
	Timeout: 5 * time.Second,
	Transport: &http.Transport{
		MaxIdleConns:        200,
		MaxIdleConnsPerHost: 200,
		IdleConnTimeout:     30 * time.Second,
		DialContext: (&net.Dialer{
			Timeout:   2 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
	},
}

type result struct {
	endpoint string
	status   int
	latency  time.Duration
	err      bool
}

type stats struct {
	count     int64
	errors    int64
	latencies []time.Duration
}

func main() {
	fmt.Println("=== EMD Load Test ===")
	fmt.Printf("Workers: %d | Duration: %s\n", numWorkers, testDuration)
	fmt.Printf("Posts: %d | Users: %d\n\n", numPosts, numUsers)

	// Wait for server
	fmt.Print("Waiting for server... ")
	for i := 0; i < 30; i++ {
		resp, err := httpClient.Get(baseURL + "/users")
		if err == nil {
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			break
		}
		if i == 29 {
			fmt.Println("FAILED: server not responding")
			return
		}
		time.Sleep(200 * time.Millisecond)
	}
	fmt.Println("OK")

	// Phase 1: Seed snapshot events
	fmt.Println("\n--- Phase 1: Seeding events (POST /events) ---")
	runPhase(testDuration, func(rng *rand.Rand) result {
		return doPostEvents(rng)
	})

	// Let the flush timer drain the queue
	fmt.Println("\nWaiting 2s for the flush timer...")
	time.Sleep(2 * time.Second)

	// Phase 2: Mixed read/write load
	fmt.Println("\n--- Phase 2: Mixed load (70% POST, 30% GET) ---")
	runPhase(testDuration, func(rng *rand.Rand) result {
		r := rng.Float64()
		switch {
		case r < 0.70:
			return doPostEvents(rng)
		case r < 0.80:
			return doGetPosts(rng)
		case r < 0.87:
			return doGetTotals(rng)
		case r < 0.94:
			return doGetSeries(rng)
		default:
			return doGetUsers()
		}
	})

	// Phase 3: Read-heavy load
	fmt.Println("\n--- Phase 3: Read-heavy load (10% POST, 90% GET) ---")
	runPhase(testDuration, func(rng *rand.Rand) result {
		r := rng.Float64()
		switch {
		case r < 0.10:
			return doPostEvents(rng)
		case r < 0.40:
			return doGetPosts(rng)
		case r < 0.60:
			return doGetTotals(rng)
		case r < 0.80:
			return doGetSeries(rng)
		default:
			return doGetUsers()
		}
	})
}

func runPhase(duration time.Duration, workFn func(rng *rand.Rand) result) {
	results := make(chan result, 10000)
	var wg sync.WaitGroup
	var totalOps atomic.Int64
	stop := make(chan struct{})

	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(seed))
			for {
				select {
				case <-stop:
					return
				default:
					r := workFn(rng)
					totalOps.Add(1)
					results <- r
				}
			}
		}(rand.Int63() + int64(i))
	}

	allResults := make(map[string]*stats)
	done := make(chan struct{})
	go func() {
		for r := range results {
			s, ok := allResults[r.endpoint]
			if !ok {
				s = &stats{}
				allResults[r.endpoint] = s
			}
			s.count++
			if r.err {
				s.errors++
			}
			s.latencies = append(s.latencies, r.latency)
		}
		close(done)
	}()

	time.Sleep(duration)
	close(stop)
	wg.Wait()
	close(results)
	<-done

	printResults(allResults, duration)
}

func printResults(allResults map[string]*stats, duration time.Duration) {
	var totalOps int64
	var totalErrors int64

	endpoints := make([]string, 0, len(allResults))
	for ep := range allResults {
		endpoints = append(endpoints, ep)
	}
	sort.Strings(endpoints)

	fmt.Printf("\n  %-22s %8s %6s %10s %10s %10s %10s\n",
		"Endpoint", "Reqs", "Errs", "Avg", "P50", "P95", "P99")
	fmt.Println("  " + repeat("-", 88))

	for _, ep := range endpoints {
		s := allResults[ep]
		totalOps += s.count
		totalErrors += s.errors

		sort.Slice(s.latencies, func(i, j int) bool {
			return s.latencies[i] < s.latencies[j]
		})

		avg := avgDuration(s.latencies)
		p50 := percentile(s.latencies, 0.50)
		p95 := percentile(s.latencies, 0.95)
		p99 := percentile(s.latencies, 0.99)

		fmt.Printf("  %-22s %8d %6d %10s %10s %10s %10s\n",
			ep, s.count, s.errors, fmtDur(avg), fmtDur(p50), fmtDur(p95), fmtDur(p99))
	}

	rps := float64(totalOps) / duration.Seconds()
	fmt.Println("  " + repeat("-", 88))
	fmt.Printf("  Total: %d reqs | Errors: %d (%.1f%%) | RPS: %.0f\n",
		totalOps, totalErrors, float64(totalErrors)/float64(totalOps)*100, rps)
}

func doPostEvents(rng *rand.Rand) result {
	n := rng.Intn(4) + 1
	batch := make([]map[string]interface{}, n)
	user := userKeys[rng.Intn(len(userKeys))]
	for i := range batch {
		event := map[string]interface{}{
			"userKey": user,
			"postId":  fmt.Sprintf("post_%d", rng.Intn(numPosts)+1),
			"ts":      time.Now().UnixMilli(),
			"uv":      float64(rng.Intn(100_000)),
			"likes":   float64(rng.Intn(5_000)),
			"views":   float64(rng.Intn(500_000)),
		}
		if rng.Float64() < 0.5 {
			event["comments"] = float64(rng.Intn(1_000))
		}
		if rng.Float64() < 0.2 {
			event["followers"] = float64(rng.Intn(50_000))
		}
		batch[i] = event
	}

	data, _ := json.Marshal(batch)
	start := time.Now()
	resp, err := httpClient.Post(baseURL+"/events", "application/json", bytes.NewReader(data))
	lat := time.Since(start)
	if err != nil {
		return result{"POST /events", 0, lat, true}
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	return result{"POST /events", resp.StatusCode, lat, resp.StatusCode != 201}
}

func doGetPosts(rng *rand.Rand) result {
	return doGet(fmt.Sprintf("%s/posts?u=%s", baseURL, userKeys[rng.Intn(len(userKeys))]), "GET /posts")
}

func doGetTotals(rng *rand.Rand) result {
	return doGet(fmt.Sprintf("%s/totals?u=%s", baseURL, userKeys[rng.Intn(len(userKeys))]), "GET /totals")
}

func doGetSeries(rng *rand.Rand) result {
	user := userKeys[rng.Intn(len(userKeys))]
	switch rng.Intn(3) {
	case 0:
		return doGet(fmt.Sprintf("%s/series/scatter?u=%s", baseURL, user), "GET /series/scatter")
	case 1:
		return doGet(fmt.Sprintf("%s/series/views?u=%s&all=1", baseURL, user), "GET /series/views")
	default:
		return doGet(fmt.Sprintf("%s/series/followers?u=%s", baseURL, user), "GET /series/followers")
	}
}

func doGetUsers() result {
	return doGet(baseURL+"/users", "GET /users")
}

func doGet(url, label string) result {
	start := time.Now()
	resp, err := httpClient.Get(url)
	lat := time.Since(start)
	if err != nil {
		return result{label, 0, lat, true}
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	return result{label, resp.StatusCode, lat, resp.StatusCode != 200}
}

func avgDuration(d []time.Duration) time.Duration {
	if len(d) == 0 {
		return 0
	}
	var sum time.Duration
	for _, v := range d {
		sum += v
	}
	return sum / time.Duration(len(d))
}

func percentile(d []time.Duration, p float64) time.Duration {
	if len(d) == 0 {
		return 0
	}
	idx := int(float64(len(d)) * p)
	if idx >= len(d) {
		idx = len(d) - 1
	}
	return d[idx]
}

func fmtDur(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%dµs", d.Microseconds())
	}
	return fmt.Sprintf("%.1fms", float64(d.Microseconds())/1000.0)
}

func repeat(s string, n int) string {
	out := ""
	for i := 0; i < n; i++ {
		out += s
	}
	return out
}
