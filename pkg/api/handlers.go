package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/coolbeans/kanun/pkg/document"
	"github.com/coolbeans/kanun/pkg/lang"
	"github.com/coolbeans/kanun/pkg/pattern"
)

type detectRequest struct {
	Text    string `json:"text"`
	PerLine bool   `json:"perLine,omitempty"`
}

type detectResponse struct {
	Language lang.Language       `json:"language"`
	Stats    lang.Statistics     `json:"stats"`
	Lines    []lang.LineLanguage `json:"lines,omitempty"`
}

func (s *Server) handleDetect(w http.ResponseWriter, r *http.Request) {
	var req detectRequest
	if !s.decode(w, r, &req) {
		return
	}
	resp := detectResponse{
		Language: lang.Detect(req.Text),
		Stats:    lang.Stats(req.Text),
	}
	if req.PerLine {
		resp.Lines = lang.DetectPerLine(req.Text)
	}
	writeJSON(w, http.StatusOK, resp)
}

type classifyRequest struct {
	Text     string `json:"text"`
	Language string `json:"language,omitempty"`
}

type classifyResponse struct {
	pattern.Classification
	ContentType pattern.ContentType `json:"contentType"`
}

func (s *Server) handleClassify(w http.ResponseWriter, r *http.Request) {
	var req classifyRequest
	if !s.decode(w, r, &req) {
		return
	}

	var c pattern.Classification
	if strings.TrimSpace(req.Language) == "" {
		c = s.classifier.ClassifyDetected(req.Text)
	} else {
		language, err := lang.ParseLanguage(req.Language)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, err)
			return
		}
		c = s.classifier.Classify(req.Text, language)
	}
	writeJSON(w, http.StatusOK, classifyResponse{Classification: c, ContentType: c.ContentType()})
}

type processRequest struct {
	Text      string `json:"text"`
	Normalize *bool  `json:"normalize,omitempty"`
	Section   string `json:"section,omitempty"`
}

type processResponse struct {
	Rows    []document.Row   `json:"rows"`
	Summary document.Summary `json:"summary"`
}

func (s *Server) handleProcess(w http.ResponseWriter, r *http.Request) {
	var req processRequest
	if !s.decode(w, r, &req) {
		return
	}

	normalize := s.cfg.Normalize
	if req.Normalize != nil {
		normalize = *req.Normalize
	}
	rows := s.processor(normalize).Process(req.Text)
	summary := document.Summarize(rows)
	if req.Section != "" {
		rows = document.BySection(rows, req.Section)
	}
	if rows == nil {
		rows = []document.Row{}
	}
	writeJSON(w, http.StatusOK, processResponse{Rows: rows, Summary: summary})
}

type patternInfo struct {
	Name        string        `json:"name"`
	Version     string        `json:"version"`
	Language    lang.Language `json:"language"`
	Description string        `json:"description,omitempty"`
	Source      string        `json:"source,omitempty"`
}

func (s *Server) handlePatterns(w http.ResponseWriter, r *http.Request) {
	sourced, _ := s.catalog.(interface {
		SourceOf(lang.Language) string
	})

	list := s.catalog.List()
	out := make([]patternInfo, 0, len(list))
	for _, p := range list {
		info := patternInfo{
			Name:        p.Name,
			Version:     p.Version,
			Language:    p.Language,
			Description: p.Description,
		}
		if sourced != nil {
			info.Source = sourced.SourceOf(p.Language)
		}
		out = append(out, info)
	}
	if len(out) == 0 {
		s.writeError(w, http.StatusServiceUnavailable, fmt.Errorf("no pattern tables registered"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"patterns": out})
}
