package courtcase

import "context"

// CrawlStatus is the lifecycle tag of a case record's data collection.
type CrawlStatus string

// Crawl statuses produced by this service. Terminal values such as
// "completed" or "failed" are written by the external crawler and stored
// verbatim.
const (
	StatusPending    CrawlStatus = "pending"
	StatusScheduling CrawlStatus = "scheduling"
	StatusCompleted  CrawlStatus = "completed"
	StatusFailed     CrawlStatus = "failed"
)

// CourtCase is the persisted record keyed by CaseNumber.
type CourtCase struct {
	CaseNumber    string      `json:"caseNumber"`
	ProcessNumber string      `json:"processNumber"`
	OriginNumber  string      `json:"originNumber"`
	Court         string      `json:"court"`
	CrawlStatus   CrawlStatus `json:"crawlStatus"`
}

// CrawlRequest is the body element sent to the crawl service. It is never stored.
type CrawlRequest struct {
	CaseNumber    string `json:"caseNumber"`
	ProcessNumber string `json:"processNumber"`
	OriginNumber  string `json:"originNumber"`
	Court         string `json:"court"`
}

// CaseStatus is one entry of the merged status view.
type CaseStatus struct {
	CaseNumber  string      `json:"caseNumber"`
	CrawlStatus CrawlStatus `json:"crawlStatus"`
}

// Repository persists court cases. Implementations replace the whole record
// on a case number conflict.
type Repository interface {
	UpsertMany(ctx context.Context, cases []CourtCase) error
	FindManyByCaseNumbers(ctx context.Context, caseNumbers []string) ([]CourtCase, error)
}

// CrawlDispatcher sends crawl requests to the external crawl service.
type CrawlDispatcher interface {
	Dispatch(ctx context.Context, requests []CrawlRequest) error
}
