package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/JakeFAU/court-case-tracker/internal/courtcase"
)

// maxBodyBytes caps JSON request bodies before decoding.
const maxBodyBytes int64 = 1 << 20

type caseNumbersRequest struct {
	CaseNumbers []string `json:"caseNumbers" validate:"required,min=1,dive,required"`
}

type courtCaseRecord struct {
	CaseNumber    string `json:"caseNumber" validate:"required"`
	ProcessNumber string `json:"processNumber"`
	OriginNumber  string `json:"originNumber"`
	Court         string `json:"court"`
	CrawlStatus   string `json:"crawlStatus"`
}

type upsertRequest struct {
	Cases []courtCaseRecord `json:"cases" validate:"required,min=1,dive"`
}

type statusResponse struct {
	Cases []courtcase.CaseStatus `json:"cases"`
}

type courtCasesResponse struct {
	Cases []courtcase.CourtCase `json:"cases"`
}

// requestCrawl handles POST /v1/court-cases/crawl. Case numbers without a
// record are dispatched to the crawl service and reported as scheduling.
func (s *Server) requestCrawl(w http.ResponseWriter, r *http.Request) {
	var req caseNumbersRequest
	if !s.decode(w, r, &req) {
		return
	}
	if !s.checkBatch(w, len(req.CaseNumbers)) {
		return
	}
	statuses, err := s.cases.RequestCrawl(r.Context(), req.CaseNumbers)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, statusResponse{Cases: statuses})
}

// caseStatus handles POST /v1/court-cases/status without dispatching anything.
func (s *Server) caseStatus(w http.ResponseWriter, r *http.Request) {
	var req caseNumbersRequest
	if !s.decode(w, r, &req) {
		return
	}
	if !s.checkBatch(w, len(req.CaseNumbers)) {
		return
	}
	statuses, err := s.cases.Status(r.Context(), req.CaseNumbers)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{Cases: statuses})
}

// findCourtCases handles GET /v1/court-cases?caseNumber=...&caseNumber=...
func (s *Server) findCourtCases(w http.ResponseWriter, r *http.Request) {
	caseNumbers := r.URL.Query()["caseNumber"]
	if len(caseNumbers) == 0 {
		writeError(w, http.StatusBadRequest, "at least one caseNumber query parameter is required")
		return
	}
	if !s.checkBatch(w, len(caseNumbers)) {
		return
	}
	found, err := s.cases.FindByCaseNumbers(r.Context(), caseNumbers)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if found == nil {
		found = []courtcase.CourtCase{}
	}
	writeJSON(w, http.StatusOK, courtCasesResponse{Cases: found})
}

// upsertCourtCases handles PUT /v1/court-cases. The crawl service and
// upstream ingestion report case data and terminal statuses here.
func (s *Server) upsertCourtCases(w http.ResponseWriter, r *http.Request) {
	var req upsertRequest
	if !s.decode(w, r, &req) {
		return
	}
	if !s.checkBatch(w, len(req.Cases)) {
		return
	}
	cases := make([]courtcase.CourtCase, len(req.Cases))
	for i, c := range req.Cases {
		cases[i] = courtcase.CourtCase{
			CaseNumber:    c.CaseNumber,
			ProcessNumber: c.ProcessNumber,
			OriginNumber:  c.OriginNumber,
			Court:         c.Court,
			CrawlStatus:   courtcase.CrawlStatus(c.CrawlStatus),
		}
	}
	if err := s.cases.UpsertMany(r.Context(), cases); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit))
			return false
		}
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return false
	}
	if err := s.validate.Struct(dst); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request: %v", err))
		return false
	}
	return true
}

func (s *Server) checkBatch(w http.ResponseWriter, n int) bool {
	if s.maxBatch > 0 && n > s.maxBatch {
		writeError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("at most %d case numbers per request", s.maxBatch))
		return false
	}
	return true
}
