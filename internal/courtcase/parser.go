package courtcase

import (
	"errors"
	"fmt"
	"regexp"
)

// Parser errors. Each is wrapped with the offending case number.
var (
	ErrCourtNotRecognized      = errors.New("court not recognized")
	ErrProcessNotRecognized    = errors.New("process not recognized")
	ErrOriginUnitNotRecognized = errors.New("origin unit not recognized")
)

var (
	courtSegment   = regexp.MustCompile(`\.(\d{2})\.`)
	processSegment = regexp.MustCompile(`(\d{7}.*\d{4})\.`)
	originSegment  = regexp.MustCompile(`(\d{4})$`)
)

// courtCodes is read-only after init.
var courtCodes = map[string]string{
	"02": "TJAL",
	"06": "TJCE",
}

// CourtForCode returns the court abbreviation for a two-digit court code.
func CourtForCode(code string) (string, bool) {
	court, ok := courtCodes[code]
	return court, ok
}

// ExtractCourt maps the first dot-delimited two-digit segment to a court.
func ExtractCourt(caseNumber string) (string, error) {
	m := courtSegment.FindStringSubmatch(caseNumber)
	if m == nil {
		return "", fmt.Errorf("%w: %q", ErrCourtNotRecognized, caseNumber)
	}
	court, ok := CourtForCode(m[1])
	if !ok {
		return "", fmt.Errorf("%w: code %s in %q", ErrCourtNotRecognized, m[1], caseNumber)
	}
	return court, nil
}

// ExtractProcess returns the span from the first 7-digit run through the last
// 4-digit run that is followed by a dot, e.g. "1234567-89.0123".
func ExtractProcess(caseNumber string) (string, error) {
	m := processSegment.FindStringSubmatch(caseNumber)
	if m == nil {
		return "", fmt.Errorf("%w: %q", ErrProcessNotRecognized, caseNumber)
	}
	return m[1], nil
}

// ExtractOriginUnit returns the four digits ending the case number.
func ExtractOriginUnit(caseNumber string) (string, error) {
	m := originSegment.FindStringSubmatch(caseNumber)
	if m == nil {
		return "", fmt.Errorf("%w: %q", ErrOriginUnitNotRecognized, caseNumber)
	}
	return m[1], nil
}

// ParseCrawlRequest runs the three extractions and assembles a CrawlRequest.
// The first failing extraction is returned.
func ParseCrawlRequest(caseNumber string) (CrawlRequest, error) {
	process, err := ExtractProcess(caseNumber)
	if err != nil {
		return CrawlRequest{}, err
	}
	origin, err := ExtractOriginUnit(caseNumber)
	if err != nil {
		return CrawlRequest{}, err
	}
	court, err := ExtractCourt(caseNumber)
	if err != nil {
		return CrawlRequest{}, err
	}
	return CrawlRequest{
		CaseNumber:    caseNumber,
		ProcessNumber: process,
		OriginNumber:  origin,
		Court:         court,
	}, nil
}
