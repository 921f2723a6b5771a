// Package server exposes the job-folder tree over HTTP for browsing
// finished and in-progress simulations: completion status per mode,
// generated plots and the raw solver artifacts.
package server

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/lightwell/phcband/pkg/ctl"
)

// knownModes are the marker-file suffixes scanned for completion.
var knownModes = []ctl.Mode{ctl.ModeTE, ctl.ModeTM, ctl.ModeZEven, ctl.ModeZOdd}

// JobStatus summarizes one job folder.
type JobStatus struct {
	Name string `json:"name"`
	// CompletedModes lists modes whose ranges marker file exists.
	CompletedModes []string `json:"completed_modes"`
	HasCtl         bool     `json:"has_ctl"`
	HasOutput      bool     `json:"has_output"`
	Plots          []string `json:"plots"`
}

// Server serves the job tree rooted at a containing folder.
type Server struct {
	root string
	port int
	log  *zap.Logger
}

// New creates a server for the given containing folder.
func New(root string, port int, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{root: root, port: port, log: log}
}

// Start launches the HTTP server and blocks.
func (s *Server) Start() error {
	e := echo.New()
	e.HideBanner = true

	e.GET("/health", s.handleHealth)
	e.GET("/api/jobs", s.handleJobs)
	e.GET("/api/jobs/:name", s.handleJob)
	e.GET("/api/jobs/:name/files/:file", s.handleFile)

	s.log.Info("results server starting",
		zap.Int("port", s.port), zap.String("root", s.root))

	return e.Start(fmt.Sprintf(":%d", s.port))
}

// Routes registers the handlers on an existing echo instance. Split out
// so tests can drive the handlers without a listener.
func (s *Server) Routes(e *echo.Echo) {
	e.GET("/health", s.handleHealth)
	e.GET("/api/jobs", s.handleJobs)
	e.GET("/api/jobs/:name", s.handleJob)
	e.GET("/api/jobs/:name/files/:file", s.handleFile)
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleJobs(c echo.Context) error {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError,
			fmt.Sprintf("reading job tree: %v", err))
	}

	jobs := []JobStatus{}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		jobs = append(jobs, s.status(entry.Name()))
	}
	sort.Slice(jobs, func(i, j int) bool { return jobs[i].Name < jobs[j].Name })

	return c.JSON(http.StatusOK, jobs)
}

func (s *Server) handleJob(c echo.Context) error {
	name := c.Param("name")
	if !validName(name) {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid job name")
	}
	if _, err := os.Stat(filepath.Join(s.root, name)); err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "unknown job")
	}
	return c.JSON(http.StatusOK, s.status(name))
}

func (s *Server) handleFile(c echo.Context) error {
	name := c.Param("name")
	file := c.Param("file")
	if !validName(name) || !validName(file) {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid path")
	}
	path := filepath.Join(s.root, name, file)
	if _, err := os.Stat(path); err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "no such file")
	}
	return c.File(path)
}

// status scans one job folder for its artifacts.
func (s *Server) status(name string) JobStatus {
	dir := filepath.Join(s.root, name)
	st := JobStatus{Name: name, CompletedModes: []string{}, Plots: []string{}}

	for _, mode := range knownModes {
		marker := filepath.Join(dir, fmt.Sprintf("%s_%s_ranges.csv", name, mode))
		if _, err := os.Stat(marker); err == nil {
			st.CompletedModes = append(st.CompletedModes, string(mode))
		}
	}

	if _, err := os.Stat(filepath.Join(dir, name+".ctl")); err == nil {
		st.HasCtl = true
	}
	if _, err := os.Stat(filepath.Join(dir, name+".out")); err == nil {
		st.HasOutput = true
	}

	pngs, _ := filepath.Glob(filepath.Join(dir, "*.png"))
	for _, p := range pngs {
		st.Plots = append(st.Plots, filepath.Base(p))
	}
	sort.Strings(st.Plots)

	return st
}

// validName rejects path traversal in URL parameters.
func validName(s string) bool {
	return s != "" && s != "." && s != ".." &&
		!strings.ContainsAny(s, "/\\")
}
