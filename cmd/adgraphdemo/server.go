package main

import (
	"encoding/json"
	"io"
	"net/http"
	"sync"

	"github.com/golang/glog"
)

// Server owns HTTP handlers and shared application state. Grounded on
// zautner-Atomic-GPT-explorer/server.go's Server: Model is "graph
// construction + parameters," Server is "request handling + lifecycle
// wiring."
type Server struct {
	mu    sync.RWMutex
	model *Model
	docs  []string
}

func NewServer() *Server {
	return &Server{}
}

// RegisterRoutes attaches all endpoints to the provided mux.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/init", s.handleInit)
	mux.HandleFunc("/api/train", s.handleTrain)
	mux.HandleFunc("/api/generate", s.handleGenerate)
	mux.HandleFunc("/api/generate_trace", s.handleGenerateTrace)
	mux.HandleFunc("/api/gradcheck", s.handleGradcheck)
}

func (s *Server) snapshot() (*Model, []string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.model, append([]string(nil), s.docs...)
}

func (s *Server) setModel(model *Model, docs []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.model = model
	s.docs = append([]string(nil), docs...)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		glog.Warningf("server: failed to encode response: %v", err)
	}
}

// decodeOptionalJSON decodes JSON when a body is present; an empty body
// is treated as "use defaults" rather than an error.
func decodeOptionalJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return nil
	}
	err := json.NewDecoder(r.Body).Decode(dst)
	if err == io.EOF {
		return nil
	}
	return err
}

func (s *Server) handleInit(w http.ResponseWriter, r *http.Request) {
	var req InitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	model := NewModel(req.Config, req.Docs)
	s.setModel(model, req.Docs)
	glog.Infof("server: initialized model, vocab_size=%d matrices=%d", model.VocabSize, len(model.Matrices))

	writeJSON(w, http.StatusOK, map[string]int{"status_matrices": len(model.Matrices)})
}

func (s *Server) handleTrain(w http.ResponseWriter, r *http.Request) {
	model, docs := s.snapshot()
	if model == nil {
		http.Error(w, "Model not initialized", http.StatusBadRequest)
		return
	}
	if len(docs) == 0 {
		http.Error(w, "No training documents provided", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	req := TrainRequest{}
	if err := decodeOptionalJSON(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	stepsPerCall := req.StepsPerCall
	if stepsPerCall <= 0 {
		stepsPerCall = 2
	}
	batchSize := req.BatchSize
	if batchSize <= 0 {
		batchSize = 4
	}

	resp, err := TrainBatchedSteps(model, docs, stepsPerCall, batchSize)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	model, _ := s.snapshot()
	if model == nil {
		http.Error(w, "Model not initialized", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	req := GenerateRequest{}
	if err := decodeOptionalJSON(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	opts := samplingConfig(req.Options, model.VocabSize)

	text := GenerateSample(model, opts)
	writeJSON(w, http.StatusOK, map[string]string{"text": text})
}

func (s *Server) handleGenerateTrace(w http.ResponseWriter, r *http.Request) {
	model, _ := s.snapshot()
	if model == nil {
		http.Error(w, "Model not initialized", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	req := GenerateRequest{}
	if err := decodeOptionalJSON(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	opts := samplingConfig(req.Options, model.VocabSize)

	writeJSON(w, http.StatusOK, GenerateSampleWithTrace(model, opts))
}

// handleGradcheck runs the rules package's analytic gradient against a
// gonum/diff/fd finite-difference check, independent of any trained
// model state.
func (s *Server) handleGradcheck(w http.ResponseWriter, r *http.Request) {
	req := GradcheckRequest{Expr: "multiply3", At: []float64{2, 3, 5}}
	if err := decodeOptionalJSON(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	resp, err := gradcheckExpr(req.Expr, req.At)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
