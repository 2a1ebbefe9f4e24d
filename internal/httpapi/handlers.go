package httpapi

import (
	"errors"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/abhisek/coursekit/internal/careerpath"
	"github.com/abhisek/coursekit/internal/progress"
	"github.com/abhisek/coursekit/internal/storage"
	"github.com/abhisek/coursekit/internal/syllabus"
)

// POST /syllabi
func (s *Server) generateSyllabus(c *gin.Context) {
	var req syllabus.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	out, err := s.cfg.Syllabi.GenerateSyllabus(c.Request.Context(), req)
	if err != nil {
		s.writeError(c, err)
		return
	}
	respondOK(c, out)
}

// GET /syllabi
func (s *Server) listSyllabi(c *gin.Context) {
	out, err := s.cfg.Syllabi.List(c.Request.Context())
	if err != nil {
		s.writeError(c, err)
		return
	}
	respondOK(c, out)
}

type updateSyllabusReq struct {
	Syllabus string `json:"syllabus"`
}

// PUT /syllabi/:name
func (s *Server) updateSyllabus(c *gin.Context) {
	var req updateSyllabusReq
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	if strings.TrimSpace(req.Syllabus) == "" {
		respondError(c, http.StatusBadRequest, "invalid_request", "syllabus text is required")
		return
	}
	name := c.Param("name")
	if err := s.cfg.Syllabi.UpdateText(c.Request.Context(), name, req.Syllabus); err != nil {
		s.writeError(c, err)
		return
	}
	respondOK(c, gin.H{"syllabus_name": name, "verified": false})
}

// POST /syllabi/:name/verify
func (s *Server) verifySyllabus(c *gin.Context) {
	name := c.Param("name")
	if err := s.cfg.Syllabi.Verify(c.Request.Context(), name); err != nil {
		s.writeError(c, err)
		return
	}
	respondOK(c, gin.H{"syllabus_name": name, "verified": true})
}

// POST /courses/:name
func (s *Server) generateCourse(c *gin.Context) {
	out, err := s.cfg.Courses.GenerateCourse(c.Request.Context(), c.Param("name"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	respondOK(c, out)
}

// GET /courses
func (s *Server) listCourses(c *gin.Context) {
	out, err := s.cfg.Courses.List(c.Request.Context())
	if err != nil {
		s.writeError(c, err)
		return
	}
	respondOK(c, out)
}

// GET /courses/search?query=
func (s *Server) searchCourses(c *gin.Context) {
	q := strings.TrimSpace(c.Query("query"))
	if q == "" {
		respondError(c, http.StatusBadRequest, "invalid_request", "query parameter is required")
		return
	}
	out, err := s.cfg.Courses.Search(c.Request.Context(), q)
	if err != nil {
		s.writeError(c, err)
		return
	}
	respondOK(c, out)
}

// GET /courses/filter?filter=
func (s *Server) filterCourses(c *gin.Context) {
	f := strings.TrimSpace(c.Query("filter"))
	if f == "" {
		respondError(c, http.StatusBadRequest, "invalid_request", "filter parameter is required")
		return
	}
	out, err := s.cfg.Courses.Filter(c.Request.Context(), f)
	if err != nil {
		s.writeError(c, err)
		return
	}
	respondOK(c, out)
}

type chatReq struct {
	SessionID string `json:"session_id"`
	Query     string `json:"query"`
}

// POST /chat
func (s *Server) chat(c *gin.Context) {
	var req chatReq
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	out, err := s.cfg.Chat.Route(c.Request.Context(), strings.TrimSpace(req.SessionID), req.Query)
	if err != nil {
		s.writeError(c, err)
		return
	}
	respondOK(c, out)
}

// GET /progress?username=&course=&status=&start_date=&end_date=
func (s *Server) listProgress(c *gin.Context) {
	f := progress.Filter{
		Username: strings.TrimSpace(c.Query("username")),
		Course:   strings.TrimSpace(c.Query("course")),
	}
	if raw := strings.TrimSpace(c.Query("status")); raw != "" {
		f.Status = progress.NormalizeStatus(raw)
		if f.Status == "" {
			respondError(c, http.StatusBadRequest, "invalid_request", "unknown status "+raw)
			return
		}
	}
	for _, d := range []struct {
		param string
		dst   *time.Time
	}{{"start_date", &f.StartDate}, {"end_date", &f.EndDate}} {
		raw := strings.TrimSpace(c.Query(d.param))
		if raw == "" {
			continue
		}
		t, err := time.Parse(progress.DateLayout, raw)
		if err != nil {
			respondError(c, http.StatusBadRequest, "invalid_request", d.param+" must be YYYY-MM-DD")
			return
		}
		*d.dst = t
	}

	recs, err := s.cfg.Progress.Find(c.Request.Context(), f, progress.ModeListAll)
	if err != nil {
		s.writeError(c, err)
		return
	}
	if recs == nil {
		recs = []progress.Record{}
	}
	respondOK(c, gin.H{"results": recs})
}

// POST /career-path
func (s *Server) careerPath(c *gin.Context) {
	var req careerpath.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	out, err := s.cfg.Career.Suggest(c.Request.Context(), req)
	if err != nil {
		s.writeError(c, err)
		return
	}
	respondOK(c, out)
}

// GET /files/*key?expires=&sig=
func (s *Server) serveFile(c *gin.Context) {
	key := strings.TrimPrefix(c.Param("key"), "/")
	if err := s.cfg.Files.Verify(key, c.Query("expires"), c.Query("sig")); err != nil {
		respondError(c, http.StatusForbidden, "forbidden", err.Error())
		return
	}
	p, err := s.cfg.Files.Path(key)
	if errors.Is(err, storage.ErrNotFound) {
		respondError(c, http.StatusNotFound, "not_found", "file not found")
		return
	}
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.FileAttachment(p, path.Base(key))
}
