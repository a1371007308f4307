// Package web exposes the scrape pipeline over HTTP: submit a source
// list, poll the task, download the workbook. The pipeline itself is
// injected as a function so the server stays testable without a
// browser.
package web

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"go.uber.org/zap"
)

// MaxSources caps one task's source list.
const MaxSources = 20

// RunFunc executes the whole scrape-merge-export pipeline and leaves
// the workbook at outPath.
type RunFunc func(ctx context.Context, urls, tickers []string, outPath string) error

// Server ties the task store, the optional cache and the pipeline
// together.
type Server struct {
	run       RunFunc
	outputDir string
	tasks     *TaskStore
	cache     *Cache // nil disables memoization
}

func NewServer(run RunFunc, outputDir string, cache *Cache) *Server {
	return &Server{
		run:       run,
		outputDir: outputDir,
		tasks:     NewTaskStore(),
		cache:     cache,
	}
}

// Handler builds the routed handler with logging and panic recovery
// middleware.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/scrape", s.handleScrape).Methods(http.MethodPost)
	r.HandleFunc("/status/{id}", s.handleStatus).Methods(http.MethodGet)
	r.HandleFunc("/download/{id}", s.handleDownload).Methods(http.MethodGet)

	return handlers.RecoveryHandler()(handlers.CombinedLoggingHandler(os.Stdout, r))
}

type scrapeRequest struct {
	URLs    []string `json:"urls"`
	Tickers []string `json:"tickers"`
}

func (s *Server) handleScrape(w http.ResponseWriter, r *http.Request) {
	var req scrapeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	n := len(req.URLs) + len(req.Tickers)
	if n == 0 || n > MaxSources {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": fmt.Sprintf("between 1 and %d sources required", MaxSources),
		})
		return
	}

	id := s.tasks.NewID()
	s.tasks.Set(id, Task{Status: StatusProcessing})
	go s.process(id, req.URLs, req.Tickers)

	writeJSON(w, http.StatusOK, map[string]string{"task_id": id})
}

// process runs the pipeline in the background and records the outcome
// on the task.
func (s *Server) process(id string, urls, tickers []string) {
	outPath := filepath.Join(s.outputDir, fmt.Sprintf("data_%s.xlsx", time.Now().Format("20060102_150405")))

	err := s.runCached(context.Background(), urls, tickers, outPath)
	if err != nil {
		zap.L().Error("task failed", zap.String("task", id), zap.Error(err))
		s.tasks.Set(id, Task{Status: StatusError, Error: err.Error()})
		return
	}
	s.tasks.Set(id, Task{Status: StatusCompleted, File: outPath})
}

// runCached consults the workbook cache when one is configured.
func (s *Server) runCached(ctx context.Context, urls, tickers []string, outPath string) error {
	if s.cache == nil {
		return s.run(ctx, urls, tickers, outPath)
	}

	data, err := s.cache.Memoize(ctx, Key(urls, tickers), func() ([]byte, error) {
		if err := s.run(ctx, urls, tickers, outPath); err != nil {
			return nil, err
		}
		return os.ReadFile(outPath)
	})
	if err != nil {
		return err
	}
	return os.WriteFile(outPath, data, 0644)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	task := s.tasks.Get(mux.Vars(r)["id"])
	writeJSON(w, http.StatusOK, task)
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	task := s.tasks.Get(mux.Vars(r)["id"])
	if task.Status != StatusCompleted {
		http.Error(w, "file not ready", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", filepath.Base(task.File)))
	http.ServeFile(w, r, task.File)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
