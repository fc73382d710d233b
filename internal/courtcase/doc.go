// Package courtcase holds the court case domain: the case-number parser that
// derives court, process and origin-unit identifiers, and the Service that
// owns the read/write path for case records and relays crawl requests.
//
// Case numbers follow the fixed form NNNNNNN-DD.AAAA.D.CC.NNNN. The two-digit
// CC segment selects the court through a closed table; NNNNNNN-DD.AAAA is the
// process segment and the trailing NNNN is the origin unit.
//
// Persistence and remote dispatch are injected through the Repository and
// CrawlDispatcher interfaces. Implementations live in internal/storage and
// internal/crawlclient.
package courtcase
