// Package httpapi is the HTTP surface: thin gin handlers that map JSON
// requests onto the syllabus, course, chat, progress and career path
// services.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/abhisek/coursekit/internal/careerpath"
	"github.com/abhisek/coursekit/internal/chat"
	"github.com/abhisek/coursekit/internal/course"
	"github.com/abhisek/coursekit/internal/logger"
	"github.com/abhisek/coursekit/internal/progress"
	"github.com/abhisek/coursekit/internal/storage"
	"github.com/abhisek/coursekit/internal/syllabus"
)

// SyllabusService drafts and manages syllabi.
type SyllabusService interface {
	GenerateSyllabus(ctx context.Context, req syllabus.Request) (*syllabus.Syllabus, error)
	List(ctx context.Context) ([]syllabus.Syllabus, error)
	UpdateText(ctx context.Context, name, text string) error
	Verify(ctx context.Context, name string) error
}

// CourseService publishes and lists packages.
type CourseService interface {
	GenerateCourse(ctx context.Context, name string) (*course.Result, error)
	List(ctx context.Context) ([]storage.Package, error)
	Search(ctx context.Context, query string) ([]storage.Package, error)
	Filter(ctx context.Context, filter string) ([]storage.Package, error)
}

// ChatRouter answers chatbot messages.
type ChatRouter interface {
	Route(ctx context.Context, sessionID, query string) (*chat.Response, error)
}

// ProgressFinder runs progress filters.
type ProgressFinder interface {
	Find(ctx context.Context, f progress.Filter, mode progress.Mode) ([]progress.Record, error)
}

// CareerAdvisor suggests career path courses.
type CareerAdvisor interface {
	Suggest(ctx context.Context, req careerpath.Request) (*careerpath.Response, error)
}

// FileStore serves signed local downloads.
type FileStore interface {
	Verify(key, expires, sig string) error
	Path(key string) (string, error)
}

// Config is the server's dependency set. Nil services leave their routes
// unregistered.
type Config struct {
	Syllabi  SyllabusService
	Courses  CourseService
	Chat     ChatRouter
	Progress ProgressFinder
	Career   CareerAdvisor
	Files    FileStore

	// CORSOrigins restricts cross-origin callers. Empty allows all.
	CORSOrigins []string

	Log *logger.Logger
}

// Server owns the gin engine and the listening http.Server.
type Server struct {
	Engine *gin.Engine
	cfg    Config
	log    *logger.Logger
}

// NewServer builds the engine and registers routes.
func NewServer(cfg Config) *Server {
	log := cfg.Log
	if log == nil {
		log = logger.NewNop()
	}
	s := &Server{cfg: cfg, log: log.With("service", "http")}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger(s.log))
	r.Use(corsMiddleware(cfg.CORSOrigins))
	s.Engine = r
	s.routes()
	return s
}

func (s *Server) routes() {
	r := s.Engine
	r.GET("/healthz", s.health)

	if s.cfg.Syllabi != nil {
		r.POST("/syllabi", s.generateSyllabus)
		r.GET("/syllabi", s.listSyllabi)
		r.PUT("/syllabi/:name", s.updateSyllabus)
		r.POST("/syllabi/:name/verify", s.verifySyllabus)
	}
	if s.cfg.Courses != nil {
		r.POST("/courses/:name", s.generateCourse)
		r.GET("/courses", s.listCourses)
		r.GET("/courses/search", s.searchCourses)
		r.GET("/courses/filter", s.filterCourses)
	}
	if s.cfg.Chat != nil {
		r.POST("/chat", s.chat)
	}
	if s.cfg.Progress != nil {
		r.GET("/progress", s.listProgress)
	}
	if s.cfg.Career != nil {
		r.POST("/career-path", s.careerPath)
	}
	if s.cfg.Files != nil {
		r.GET(storage.FilesPath+"*key", s.serveFile)
	}
}

// ListenAndServe serves on addr until ctx is done, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		s.log.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) health(c *gin.Context) {
	respondOK(c, gin.H{"status": "ok"})
}
