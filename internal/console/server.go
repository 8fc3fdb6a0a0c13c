package console

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	"github.com/joelkehle/billguard/internal/billaudit"
	"github.com/joelkehle/billguard/internal/extract"
)

const (
	maxJSONBody    = 5 << 20
	maxUploadBytes = 20 << 20
)

type Server struct {
	pipeline    *billaudit.Pipeline
	store       *ResultStore
	webDir      string
	model       string
	timeout     time.Duration
	pdfRenderer ReportPDFRenderer
	log         zerolog.Logger
}

type analysisPayload struct {
	Token     string                     `json:"token"`
	Cached    bool                       `json:"cached"`
	CreatedAt time.Time                  `json:"created_at"`
	Notices   []string                   `json:"notices,omitempty"`
	Result    billaudit.ResponseEnvelope `json:"result"`
}

type chatRequest struct {
	Token    string               `json:"token"`
	Question string               `json:"question"`
	History  []billaudit.ChatTurn `json:"history"`
}

// NewServer wires the console handler with the default headless-Chromium
// PDF renderer. A nil pipeline serves local-only analyses and disables the
// chat endpoint.
func NewServer(pipeline *billaudit.Pipeline, store *ResultStore, webDir, model, chromePath string, timeout time.Duration, logger zerolog.Logger) http.Handler {
	return newServer(pipeline, store, webDir, model, timeout, logger, NewChromiumPDFRenderer(webDir, chromePath))
}

func newServer(pipeline *billaudit.Pipeline, store *ResultStore, webDir, model string, timeout time.Duration, logger zerolog.Logger, pdfRenderer ReportPDFRenderer) http.Handler {
	s := &Server{
		pipeline:    pipeline,
		store:       store,
		webDir:      webDir,
		model:       model,
		timeout:     timeout,
		pdfRenderer: pdfRenderer,
		log:         logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/analyze", s.handleAnalyze)
	mux.HandleFunc("/api/chat", s.handleChat)
	mux.HandleFunc("/api/result/", s.handleResult)
	mux.HandleFunc("/api/samples", s.handleSamples)
	mux.HandleFunc("/report/", s.handleReport)
	mux.HandleFunc("/healthz", s.handleHealthz)
	mux.HandleFunc("/", s.handleRoot)

	access := hlog.AccessHandler(func(r *http.Request, status, size int, duration time.Duration) {
		hlog.FromRequest(r).Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", status).
			Dur("duration", duration).
			Msg("request")
	})
	return hlog.NewHandler(logger)(access(mux))
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"error": msg})
}

func methodOnly(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method != method {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return false
	}
	return true
}

func (s *Server) requestContext(r *http.Request) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return r.Context(), func() {}
	}
	return context.WithTimeout(r.Context(), s.timeout)
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	// Prevent stale frontend bundles from breaking the UI after deploys.
	w.Header().Set("Cache-Control", "no-store")
	if r.URL.Path == "/" || r.URL.Path == "/index.html" {
		http.ServeFile(w, r, filepath.Join(s.webDir, "index.html"))
		return
	}
	path := filepath.Join(s.webDir, filepath.Clean(r.URL.Path))
	if _, err := fs.Stat(os.DirFS(s.webDir), strings.TrimPrefix(filepath.Clean(r.URL.Path), "/")); err == nil {
		http.ServeFile(w, r, path)
		return
	}
	http.NotFound(w, r)
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if !methodOnly(w, r, http.MethodPost) {
		return
	}
	env, notices, err := s.decodeAnalyzeRequest(r)
	if err != nil {
		writeError(w, 400, err.Error())
		return
	}
	if strings.TrimSpace(env.BillText) == "" {
		writeError(w, 400, "bill text is required")
		return
	}

	if entry := s.store.Lookup(env.BillText, env.InsuranceText); entry != nil {
		writeJSON(w, 200, analysisPayload{
			Token:     entry.Token,
			Cached:    true,
			CreatedAt: entry.CreatedAt,
			Notices:   notices,
			Result:    entry.Result,
		})
		return
	}

	ctx, cancel := s.requestContext(r)
	defer cancel()
	if env.Model == "" {
		env.Model = s.model
	}
	var res billaudit.ResponseEnvelope
	if s.pipeline == nil {
		res, err = billaudit.RunLocal(env)
	} else {
		res, err = s.pipeline.Run(ctx, env)
	}
	if err != nil {
		if errors.Is(err, billaudit.ErrEmptyBill) {
			writeError(w, 400, err.Error())
			return
		}
		s.log.Error().Err(err).Msg("analysis run failed")
		writeError(w, 500, "analysis failed")
		return
	}

	entry := s.store.Put(env.BillText, env.InsuranceText, res)
	writeJSON(w, 200, analysisPayload{
		Token:     entry.Token,
		CreatedAt: entry.CreatedAt,
		Notices:   notices,
		Result:    res,
	})
}

func (s *Server) decodeAnalyzeRequest(r *http.Request) (billaudit.RequestEnvelope, []string, error) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		return s.decodeMultipartAnalyze(r)
	}
	var env billaudit.RequestEnvelope
	body, err := io.ReadAll(io.LimitReader(r.Body, maxJSONBody))
	if err != nil {
		return env, nil, errors.New("invalid request body")
	}
	if err := json.Unmarshal(body, &env); err != nil {
		return env, nil, errors.New("invalid JSON body")
	}
	return env, nil, nil
}

func (s *Server) decodeMultipartAnalyze(r *http.Request) (billaudit.RequestEnvelope, []string, error) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		return billaudit.RequestEnvelope{}, nil, errors.New("invalid multipart form")
	}
	env := billaudit.RequestEnvelope{
		BillText:      r.FormValue("bill_text"),
		InsuranceText: r.FormValue("insurance_text"),
		Model:         r.FormValue("model"),
	}
	var notices []string
	if up, ok, err := s.readUpload(r, "bill_file"); err != nil {
		return env, nil, err
	} else if ok {
		env.BillText = up.result.Text
		env.Metadata = billaudit.RequestMetadata{
			SourceFilename:   up.filename,
			ExtractionMethod: up.result.Method,
			Truncated:        up.result.Truncated,
		}
		notices = append(notices, up.result.Notice)
	}
	if up, ok, err := s.readUpload(r, "insurance_file"); err != nil {
		return env, nil, err
	} else if ok {
		env.InsuranceText = up.result.Text
		notices = append(notices, up.result.Notice)
	}
	return env, notices, nil
}

type upload struct {
	filename string
	result   extract.Result
}

func (s *Server) readUpload(r *http.Request, field string) (upload, bool, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return upload{}, false, nil
		}
		return upload{}, false, fmt.Errorf("unreadable %s upload", field)
	}
	defer file.Close()

	// One byte past the extractor's limit so oversized files trip its size
	// check instead of silently truncating at the boundary.
	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes+1))
	if err != nil {
		return upload{}, false, fmt.Errorf("unreadable %s upload", field)
	}
	res, err := extract.FromUpload(r.Context(), header.Filename, data)
	if err != nil {
		return upload{}, false, err
	}
	return upload{filename: header.Filename, result: res}, true, nil
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if !methodOnly(w, r, http.MethodPost) {
		return
	}
	var req chatRequest
	body, err := io.ReadAll(io.LimitReader(r.Body, maxJSONBody))
	if err != nil {
		writeError(w, 400, "invalid request body")
		return
	}
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, 400, "invalid JSON body")
		return
	}

	if s.pipeline == nil {
		writeError(w, 503, "chat is unavailable in local-only mode")
		return
	}
	entry := s.store.Get(strings.TrimSpace(req.Token))
	if entry == nil {
		writeError(w, 404, "result not found")
		return
	}
	analysisText := entry.Result.Analysis.Narrative
	if analysisText == "" {
		analysisText = entry.Result.ReportMarkdown
	}

	ctx, cancel := s.requestContext(r)
	defer cancel()
	reply, err := s.pipeline.Answer(ctx, s.model, billaudit.ChatRequest{
		BillText:      entry.BillText,
		InsuranceText: entry.InsuranceText,
		AnalysisText:  analysisText,
		History:       req.History,
		Question:      req.Question,
	})
	if err != nil {
		if errors.Is(err, billaudit.ErrEmptyQuestion) {
			writeError(w, 400, err.Error())
			return
		}
		s.log.Error().Err(err).Str("token", entry.Token).Msg("chat reply failed")
		writeError(w, 502, "chat service unavailable")
		return
	}
	writeJSON(w, 200, map[string]any{"token": entry.Token, "reply": reply})
}

func (s *Server) handleResult(w http.ResponseWriter, r *http.Request) {
	if !methodOnly(w, r, http.MethodGet) {
		return
	}
	token := strings.TrimPrefix(r.URL.Path, "/api/result/")
	token = strings.TrimSuffix(token, "/")
	if token == "" {
		writeError(w, 400, "token is required")
		return
	}
	entry := s.store.Get(token)
	if entry == nil {
		writeError(w, 404, "result not found")
		return
	}
	writeJSON(w, 200, analysisPayload{
		Token:     entry.Token,
		Cached:    true,
		CreatedAt: entry.CreatedAt,
		Result:    entry.Result,
	})
}

func (s *Server) handleSamples(w http.ResponseWriter, r *http.Request) {
	if !methodOnly(w, r, http.MethodGet) {
		return
	}
	writeJSON(w, 200, map[string]any{"samples": billaudit.SampleDocuments()})
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if !methodOnly(w, r, http.MethodGet) {
		return
	}
	writeJSON(w, 200, map[string]any{"status": "ok"})
}

// handleReport serves /report/{token} as markdown, /report/{token}/pdf as a
// PDF attachment, and /report/{token}/pdf/inline for in-browser preview.
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	if !methodOnly(w, r, http.MethodGet) {
		return
	}
	rest := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/report/"), "/")
	parts := strings.Split(rest, "/")
	if parts[0] == "" {
		writeError(w, 400, "token is required")
		return
	}
	entry := s.store.Get(parts[0])
	if entry == nil {
		writeError(w, 404, "result not found")
		return
	}

	switch {
	case len(parts) == 1:
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(200)
		_, _ = w.Write([]byte(entry.Result.ReportMarkdown))
	case len(parts) == 2 && parts[1] == "pdf":
		s.servePDF(w, r, entry, false)
	case len(parts) == 3 && parts[1] == "pdf" && parts[2] == "inline":
		s.servePDF(w, r, entry, true)
	default:
		writeError(w, 404, "unknown report path")
	}
}

func (s *Server) servePDF(w http.ResponseWriter, r *http.Request, entry *StoredResult, inline bool) {
	if s.pdfRenderer == nil {
		writeError(w, 503, "pdf renderer unavailable")
		return
	}
	pdf, err := s.pdfRenderer.Render(r.Context(), entry.Result.ReportMarkdown)
	if err != nil {
		s.log.Error().Err(err).Str("token", entry.Token).Msg("render report pdf failed")
		writeError(w, 500, "failed to render pdf")
		return
	}
	disposition := "attachment"
	if inline {
		disposition = "inline"
	}
	filename := fmt.Sprintf("billguard-%s.pdf", sanitizeFilename(entry.Token))
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("%s; filename=%q", disposition, filename))
	w.WriteHeader(200)
	_, _ = w.Write(pdf)
}

func sanitizeFilename(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return "report"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r
		case r >= 'A' && r <= 'Z':
			return r
		case r >= '0' && r <= '9':
			return r
		case r == '-', r == '_':
			return r
		default:
			return '-'
		}
	}, v)
}

type ReportPDFRenderer interface {
	Render(ctx context.Context, report string) ([]byte, error)
}
