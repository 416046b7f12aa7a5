package ui

import (
	"embed"
	"fmt"
	"html/template"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"rarscale/domain/analysis"
	"rarscale/domain/core"
	"rarscale/ports"
)

//go:embed templates/*.html
var embeddedFiles embed.FS

// Server is the dashboard over stored runs: a run list and a per-run result
// page. It reads through the same port as the JSON API.
type Server struct {
	router *gin.Engine
	reader ports.ResultReaderPort
}

func NewServer(reader ports.ResultReaderPort) (*Server, error) {
	funcMap := template.FuncMap{
		"sci": func(v float64) string { return fmt.Sprintf("%.3e", v) },
		"fix": func(v float64) string { return fmt.Sprintf("%.3f", v) },
	}
	templates, err := template.New("").Funcs(funcMap).ParseFS(embeddedFiles, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	router := gin.Default()
	router.SetHTMLTemplate(templates)

	s := &Server{router: router, reader: reader}
	router.GET("/", s.handleIndex)
	router.GET("/runs/:id", s.handleRun)
	return s, nil
}

// Run starts the dashboard on the given port.
func (s *Server) Run(port string) error {
	log.Printf("[ui] dashboard listening on :%s", port)
	return s.router.Run(":" + port)
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) handleIndex(c *gin.Context) {
	runs, err := s.reader.ListRuns(c.Request.Context(), 50)
	if err != nil {
		c.HTML(http.StatusInternalServerError, "error.html", gin.H{"Error": err.Error()})
		return
	}
	c.HTML(http.StatusOK, "index.html", gin.H{"Runs": runs})
}

func (s *Server) handleRun(c *gin.Context) {
	record, err := s.loadRecord(c)
	if err != nil {
		return
	}
	c.HTML(http.StatusOK, "run.html", gin.H{
		"Run":      record,
		"Ensemble": record.Ensemble,
		"Galaxies": record.Galaxies,
	})
}

func (s *Server) loadRecord(c *gin.Context) (*analysis.RunRecord, error) {
	id, err := core.ParseRunID(c.Param("id"))
	if err != nil {
		c.HTML(http.StatusBadRequest, "error.html", gin.H{"Error": err.Error()})
		return nil, err
	}
	record, err := s.reader.GetRun(c.Request.Context(), id)
	if err != nil {
		c.HTML(http.StatusNotFound, "error.html", gin.H{"Error": err.Error()})
		return nil, err
	}
	return record, nil
}
