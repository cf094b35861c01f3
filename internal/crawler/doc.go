// Package crawler defines the core types and interfaces shared across the
// frontier coordination subsystems: the fingerprinter, the dedup ledger and
// its pluggable backends, the frontier queue, and the crawl loop that drives
// them.
package crawler
