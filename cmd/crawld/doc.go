// Package main hosts the crawld entrypoint.
//
// Architecture overview:
//   - Frontier: internal/frontier holds this process's pending requests in
//     breadth-first (depth ascending, FIFO among equals) or depth-first
//     (most recent first) order, fixed at startup. Insertion is never
//     deduplicated; duplicates are cheap and resolved at claim time.
//   - Dedup ledger: internal/ledger opens one of four backends (memory,
//     append-only file, embedded SQLite, Redis) behind the crawler.Ledger
//     interface. TryClaim is the single atomic synchronization point shared
//     by every crawler process; a fingerprint is claimed by exactly one
//     caller, and a claim is never rolled back even when the fetch fails.
//   - Crawl loop: internal/worker pops candidates, fingerprints them
//     (internal/fingerprint, SHA-256 over the normalized URL), claims them
//     against the ledger with bounded retries, and fans fetches out to a
//     bounded pool. Discovered links from internal/extract re-enter the
//     frontier at depth+1, subject to the max-depth bound.
//   - Fetch pipeline: internal/fetcher/colly performs the page fetch with
//     optional robots.txt enforcement; internal/ratelimit paces fetches
//     per domain.
//   - Plumbing: Viper populates config from env (CRAWLD_ prefix) and an
//     optional file; zap provides structured logging; Prometheus metrics
//     plus /healthz, /readyz and /status are served by internal/api.
//
// Operational notes:
//   - Several crawld processes may run concurrently (same or different
//     machines with the Redis backend); they coordinate only through the
//     ledger. Each process owns its frontier exclusively.
//   - An unreachable ledger at startup is fatal. During the crawl, ledger
//     failures are retried with backoff and the affected request is then
//     dropped; the loop keeps running.
//   - SIGINT/SIGTERM drains in-flight fetches and exits. Claims held by
//     abandoned fetches stay claimed; re-opening them would reintroduce
//     the duplicate-fetch race the ledger exists to prevent.
//
// Run locally: go run ./cmd/crawld -config config.yaml, or rely on env
// overrides alone (CRAWLD_CRAWL_SEEDS, CRAWLD_LEDGER_BACKEND, ...).
package main
