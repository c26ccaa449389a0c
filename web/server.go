// Package web serves a localhost-only single-user review UI; it
// intentionally has no auth/CSRF protection in this mode.
package web

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"regexp"
	"sync"
	"time"

	"plansync/assignment"
	"plansync/config"
	"plansync/internal/shift"
	"plansync/lighthouse"
	"plansync/reconcile"
	"plansync/submitter"
)

//go:embed templates/*.html
var templateFS embed.FS

var datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// SnapshotStore is the local persistence surface the UI needs: the
// current ERP-origin snapshot for batch building, and full replacement
// after a successful apply.
type SnapshotStore interface {
	ListERPAssignments() ([]assignment.Local, error)
	ReplaceSnapshot(records []assignment.Local) (int, error)
}

type Server struct {
	svc    *reconcile.Service
	client lighthouse.Client
	store  SnapshotStore
	cfg    config.Config

	mux *http.ServeMux

	mu       sync.Mutex
	analyses map[string]*reconcile.Analysis
}

type changeView struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
	Diff     string `json:"diff,omitempty"`
}

type changesResponse struct {
	Date       string       `json:"date"`
	Shift      string       `json:"shift"`
	Rows       int          `json:"rows"`
	Candidates int          `json:"candidates"`
	Existing   int          `json:"existing"`
	Adds       []changeView `json:"adds"`
	Updates    []changeView `json:"updates"`
	Deletes    []changeView `json:"deletes"`
}

type applyRequest struct {
	Date  string   `json:"date"`
	Shift string   `json:"shift"`
	IDs   []string `json:"ids"`
}

type applyResponse struct {
	Created        int `json:"created"`
	Updated        int `json:"updated"`
	Deleted        int `json:"deleted"`
	SkippedDeletes int `json:"skippedDeletes"`
	SnapshotRows   int `json:"snapshotRows"`
}

type reviewPageView struct {
	Title        string
	DefaultDate  string
	DefaultShift string
}

func NewServer(svc *reconcile.Service, client lighthouse.Client, store SnapshotStore, cfg config.Config) http.Handler {
	server := &Server{
		svc:      svc,
		client:   client,
		store:    store,
		cfg:      cfg,
		analyses: make(map[string]*reconcile.Analysis),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", server.handleReview)
	mux.HandleFunc("GET /api/changes", server.handleAPIChanges)
	mux.HandleFunc("POST /api/apply", server.handleAPIApply)
	server.mux = mux

	return server
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) handleReview(w http.ResponseWriter, r *http.Request) {
	defaultShift := s.cfg.Sync.DefaultShift
	if defaultShift == "" {
		defaultShift = assignment.ShiftDay
	}
	view := reviewPageView{
		Title:        "plansync review",
		DefaultDate:  time.Now().Format("2006-01-02"),
		DefaultShift: defaultShift,
	}
	if err := renderPage(w, "review.html", view); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (s *Server) handleAPIChanges(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	shiftCode := r.URL.Query().Get("shift")
	if !datePattern.MatchString(date) {
		http.Error(w, "invalid date format (expected YYYY-MM-DD)", http.StatusBadRequest)
		return
	}

	analysis, err := s.analysisFor(r, date, shiftCode, true)
	if err != nil {
		if errors.Is(err, shift.ErrInvalidDate) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		http.Error(w, fmt.Sprintf("analyze shift: %v", err), http.StatusBadGateway)
		return
	}

	writeJSON(w, http.StatusOK, changesResponseFrom(analysis))
}

func (s *Server) handleAPIApply(w http.ResponseWriter, r *http.Request) {
	var req applyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("decode request: %v", err), http.StatusBadRequest)
		return
	}
	if !datePattern.MatchString(req.Date) {
		http.Error(w, "invalid date format (expected YYYY-MM-DD)", http.StatusBadRequest)
		return
	}
	if len(req.IDs) == 0 {
		http.Error(w, "no changes selected", http.StatusBadRequest)
		return
	}

	analysis, err := s.analysisFor(r, req.Date, req.Shift, false)
	if err != nil {
		http.Error(w, fmt.Sprintf("analyze shift: %v", err), http.StatusBadGateway)
		return
	}

	selected := reconcile.SelectionOf(req.IDs...).Filter(analysis.Changes)
	if selected.Empty() {
		http.Error(w, "selected changes no longer exist; reload and retry", http.StatusConflict)
		return
	}

	current, err := s.store.ListERPAssignments()
	if err != nil {
		http.Error(w, fmt.Sprintf("read local assignments: %v", err), http.StatusInternalServerError)
		return
	}

	result, err := submitter.Execute(r.Context(), s.client, selected, current)
	if err != nil {
		http.Error(w, fmt.Sprintf("apply batch: %v", err), http.StatusBadGateway)
		return
	}

	// The remote store is the source of truth after a write; every
	// cached analysis is stale now.
	s.mu.Lock()
	s.analyses = make(map[string]*reconcile.Analysis)
	s.mu.Unlock()

	rows, err := s.refreshSnapshot(r)
	if err != nil {
		http.Error(w, fmt.Sprintf("batch applied but snapshot refresh failed: %v", err), http.StatusBadGateway)
		return
	}

	writeJSON(w, http.StatusOK, applyResponse{
		Created:        result.Created,
		Updated:        result.Updated,
		Deleted:        result.Deleted,
		SkippedDeletes: result.SkippedDeletes,
		SnapshotRows:   rows,
	})
}

func (s *Server) analysisFor(r *http.Request, date, shiftCode string, refresh bool) (*reconcile.Analysis, error) {
	key := date + "|" + shiftCode

	if !refresh {
		s.mu.Lock()
		cached, ok := s.analyses[key]
		s.mu.Unlock()
		if ok {
			return cached, nil
		}
	}

	analysis, err := s.svc.Analyze(r.Context(), date, shiftCode)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.analyses[key] = analysis
	s.mu.Unlock()
	return analysis, nil
}

// refreshSnapshot re-pulls the planning horizon and replaces the local
// snapshot, so the next analysis sees the post-apply remote state.
func (s *Server) refreshSnapshot(r *http.Request) (int, error) {
	from, to := lighthouse.PlanningHorizon(time.Now())
	items, err := s.client.ListPlanningItems(r.Context(), s.cfg.Lighthouse.ClusterID, from, to)
	if err != nil {
		return 0, fmt.Errorf("list planning items: %w", err)
	}

	records := make([]assignment.Local, 0, len(items))
	for _, item := range items {
		records = append(records, assignment.FromPlanningItem(item))
	}
	return s.store.ReplaceSnapshot(records)
}

func changesResponseFrom(analysis *reconcile.Analysis) changesResponse {
	return changesResponse{
		Date:       analysis.Date,
		Shift:      analysis.ShiftCode,
		Rows:       analysis.Rows,
		Candidates: analysis.Candidates,
		Existing:   analysis.Existing,
		Adds:       changeViews(analysis.Changes.Adds),
		Updates:    changeViews(analysis.Changes.Updates),
		Deletes:    changeViews(analysis.Changes.Deletes),
	}
}

func changeViews(changes []reconcile.Change) []changeView {
	out := make([]changeView, 0, len(changes))
	for _, change := range changes {
		out = append(out, changeView{
			ID:       change.ID,
			Type:     string(change.Type),
			Title:    change.Title,
			Subtitle: change.Subtitle,
			Diff:     change.Diff,
		})
	}
	return out
}

func renderPage(w http.ResponseWriter, pageTemplate string, data any) error {
	tmpl, err := template.ParseFS(templateFS, "templates/"+pageTemplate)
	if err != nil {
		return fmt.Errorf("parse template %s: %w", pageTemplate, err)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.Execute(w, data); err != nil {
		return fmt.Errorf("render template %s: %w", pageTemplate, err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
