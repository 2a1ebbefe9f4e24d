// Package app composes configuration from the environment and wires the
// services shared by the CLI commands and the HTTP server.
package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/abhisek/coursekit/internal/assessment"
	"github.com/abhisek/coursekit/internal/careerpath"
	"github.com/abhisek/coursekit/internal/chat"
	"github.com/abhisek/coursekit/internal/course"
	"github.com/abhisek/coursekit/internal/envutil"
	"github.com/abhisek/coursekit/internal/httpapi"
	"github.com/abhisek/coursekit/internal/llm"
	"github.com/abhisek/coursekit/internal/logger"
	"github.com/abhisek/coursekit/internal/progress"
	"github.com/abhisek/coursekit/internal/scorm"
	"github.com/abhisek/coursekit/internal/storage"
	"github.com/abhisek/coursekit/internal/store"
	"github.com/abhisek/coursekit/internal/syllabus"
)

// Config is the full application configuration.
type Config struct {
	LLM        llm.Config
	Assessment assessment.Config
	Scorm      scorm.Config
	Progress   progress.Config
	Chat       chat.Config
	Storage    storage.Config
	Syllabus   syllabus.Config
	Course     course.Config
	Career     careerpath.Config

	HTTPAddr    string
	CORSOrigins []string
}

// ConfigFromEnv reads every package's settings from COURSEKIT_* variables.
func ConfigFromEnv() Config {
	cfg := Config{
		LLM:        llm.ConfigFromEnv(),
		Assessment: assessment.DefaultConfig(),
		Scorm:      scorm.Config{ResetEndpoint: envutil.String("COURSEKIT_QUIZ_RESET_ENDPOINT", "")},
		Progress:   progress.ConfigFromEnv(),
		Chat:       chat.ConfigFromEnv(),
		Storage:    storage.ConfigFromEnv(),
		Syllabus:   syllabus.ConfigFromEnv(),
		Course:     course.ConfigFromEnv(),
		Career:     careerpath.DefaultConfig(),
		HTTPAddr:   envutil.String("COURSEKIT_HTTP_ADDR", ":8080"),
	}
	if v := envutil.String("COURSEKIT_CORS_ORIGINS", ""); v != "" {
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.CORSOrigins = append(cfg.CORSOrigins, o)
			}
		}
	}
	return cfg
}

// App holds the wired services. Close releases everything New opened.
type App struct {
	Config Config
	Log    *logger.Logger

	Store    *store.Store
	Provider llm.Provider
	Objects  storage.ObjectStore

	Syllabi   *syllabus.Service
	Assembler *scorm.Assembler
	Courses   *course.Service
	Progress  *progress.Repo
	Chat      *chat.Router
	Career    *careerpath.Advisor

	closers []func() error
}

// New opens the application store at dbPath and wires every service.
func New(ctx context.Context, cfg Config, dbPath string, log *logger.Logger) (*App, error) {
	if log == nil {
		log = logger.NewNop()
	}
	a := &App{Config: cfg, Log: log}

	st, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	a.Store = st
	a.closers = append(a.closers, st.Close)

	provider, err := llm.NewProvider(ctx, cfg.LLM, st.EventRepo(), log)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("configure LLM provider: %w", err)
	}
	a.Provider = provider

	if cfg.Storage.Mode != storage.ModeGCS && cfg.Storage.SigningKey == "" {
		cfg.Storage.SigningKey = uuid.NewString()
		log.Warn("COURSEKIT_SIGNING_KEY not set, download links will not survive a restart")
	}
	objects, err := storage.Open(ctx, cfg.Storage, log)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("open object store: %w", err)
	}
	a.Objects = objects
	if c, ok := objects.(interface{ Close() error }); ok {
		a.closers = append(a.closers, c.Close)
	}

	repo, err := progress.Open(cfg.Progress, log)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("open progress database: %w", err)
	}
	a.Progress = repo
	a.closers = append(a.closers, repo.Close)

	var sessions chat.SessionStore
	if cfg.Chat.RedisAddr != "" {
		rs, err := chat.NewRedisSessionStore(ctx, cfg.Chat, log)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("open session store: %w", err)
		}
		sessions = rs
		a.closers = append(a.closers, rs.Close)
	} else {
		sessions = chat.NewMemorySessionStore(cfg.Chat.HistoryLimit)
	}

	supplier := assessment.NewSupplier(provider, cfg.Assessment, log)
	a.Assembler = scorm.NewAssembler(supplier, cfg.Scorm, log)
	a.Syllabi = syllabus.NewService(provider, st.SyllabusRepo(), cfg.Syllabus, log)
	a.Courses = course.NewService(a.Syllabi, a.Assembler, objects, cfg.Course, log)
	a.Chat = chat.NewRouter(provider, progress.NewExtractor(provider, cfg.Progress, log), repo, sessions, cfg.Chat, log)
	a.Career = careerpath.NewAdvisor(provider, cfg.Career, log)

	a.Config = cfg
	return a, nil
}

// HTTPServer builds the HTTP surface over the wired services.
func (a *App) HTTPServer() *httpapi.Server {
	hc := httpapi.Config{
		Syllabi:     a.Syllabi,
		Courses:     a.Courses,
		Chat:        a.Chat,
		Progress:    a.Progress,
		Career:      a.Career,
		CORSOrigins: a.Config.CORSOrigins,
		Log:         a.Log,
	}
	if local, ok := a.Objects.(*storage.LocalStore); ok {
		hc.Files = local
	}
	return httpapi.NewServer(hc)
}

// Close releases resources in reverse order of acquisition.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
