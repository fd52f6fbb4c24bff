// ABOUTME: HTTP handlers for files, waveforms, exports and session control
// ABOUTME: Maps catalog, decode and session errors onto status codes
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/pcmscope/pcmscope-go/internal/analysis"
	"github.com/pcmscope/pcmscope-go/internal/catalog"
	"github.com/pcmscope/pcmscope-go/internal/metrics"
	"github.com/pcmscope/pcmscope-go/internal/session"
	"github.com/pcmscope/pcmscope-go/pkg/audio"
	"github.com/pcmscope/pcmscope-go/pkg/audio/decode"
	"github.com/pcmscope/pcmscope-go/pkg/audio/encode"
	"github.com/pcmscope/pcmscope-go/pkg/playback"
	"github.com/pcmscope/pcmscope-go/pkg/waveform"
)

// mtimeLayout formats file modification times in listings
const mtimeLayout = "2006-01-02 15:04:05"

type fileEntry struct {
	Name  string `json:"name"`
	Size  int64  `json:"size"`
	MTime string `json:"mtime"`
}

type waveformResponse struct {
	Name     string            `json:"name"`
	Width    int               `json:"width"`
	Duration float64           `json:"duration"`
	Samples  int               `json:"samples"`
	Peaks    waveform.Envelope `json:"peaks"`
}

type infoResponse struct {
	Name string `json:"name"`
	Size int64  `json:"size"`
	analysis.Report
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	if s.metrics != nil {
		r.Use(metrics.RequestMiddleware(s.metrics))
		r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
			s.metrics.Handler(s.updateGauges).ServeHTTP(w, r)
		})
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(allowAllOrigins)
		r.Get("/files", s.handleFiles)
		r.Get("/play/{name}", s.handlePlay)
		r.Get("/waveform/{name}", s.handleWaveform)
		r.Get("/wav/{name}", s.handleWAV)
		r.Get("/info/{name}", s.handleInfo)

		r.Route("/session", func(r chi.Router) {
			r.Get("/", s.handleSessionStatus)
			r.Post("/load", s.handleSessionLoad)
			r.Post("/play", s.sessionAction(func(ss *session.Session) error { return ss.Play() }))
			r.Post("/pause", s.sessionAction(func(ss *session.Session) error { return ss.Pause() }))
			r.Post("/toggle", s.sessionAction(func(ss *session.Session) error { return ss.Toggle() }))
			r.Post("/stop", s.sessionAction(func(ss *session.Session) error { return ss.Stop() }))
			r.Post("/seek", s.handleSessionSeek)
		})
	})

	r.Get("/ws", s.handleWebSocket)
	return r
}

func allowAllOrigins(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		next.ServeHTTP(w, r)
	})
}

func (s *Server) updateGauges() {
	if s.session != nil {
		st := s.session.Status()
		s.metrics.SetPlayback(int(st.State), st.Position)
	}
}

// handleFiles handles GET /api/files
func (s *Server) handleFiles(w http.ResponseWriter, r *http.Request) {
	assets, err := s.catalog.List()
	if err != nil {
		writeError(w, err)
		return
	}

	files := make([]fileEntry, 0, len(assets))
	for _, a := range assets {
		files = append(files, fileEntry{
			Name:  a.Name,
			Size:  a.Size,
			MTime: a.ModTime.Format(mtimeLayout),
		})
	}
	writeJSON(w, http.StatusOK, files)
}

// handlePlay handles GET /api/play/{name}, returning the raw PCM bytes
func (s *Server) handlePlay(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	data, err := s.catalog.ReadAll(name)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", name))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// handleWaveform handles GET /api/waveform/{name}?width=N
func (s *Server) handleWaveform(w http.ResponseWriter, r *http.Request) {
	width := s.config.WaveformWidth
	if raw := r.URL.Query().Get("width"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "width must be an integer"})
			return
		}
		if n > s.config.MaxWidth {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: fmt.Sprintf("width must be at most %d", s.config.MaxWidth)})
			return
		}
		width = n
	}

	name := chi.URLParam(r, "name")
	buf, err := s.decodeFile(name)
	if err != nil {
		writeError(w, err)
		return
	}

	env, err := waveform.Summarize(buf, width)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, waveformResponse{
		Name:     name,
		Width:    width,
		Duration: buf.Duration(),
		Samples:  buf.Len(),
		Peaks:    env,
	})
}

// handleWAV handles GET /api/wav/{name}, exporting the file with a RIFF header
func (s *Server) handleWAV(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	data, err := s.catalog.ReadAll(name)
	if err != nil {
		writeError(w, err)
		return
	}

	wav, err := encode.EncodeWAV(data)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "audio/wav")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", strings.TrimSuffix(name, catalog.Extension)+".wav"))
	w.Header().Set("Content-Length", strconv.Itoa(len(wav)))
	w.WriteHeader(http.StatusOK)
	w.Write(wav)
}

// handleInfo handles GET /api/info/{name}
func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	asset, err := s.catalog.Stat(name)
	if err != nil {
		writeError(w, err)
		return
	}
	buf, err := s.decodeFile(name)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, infoResponse{
		Name:   name,
		Size:   asset.Size,
		Report: analysis.Analyze(buf),
	})
}

func (s *Server) decodeFile(name string) (*audio.SampleBuffer, error) {
	data, err := s.catalog.ReadAll(name)
	if err != nil {
		return nil, err
	}
	return s.decoder.Decode(data)
}

// handleSessionStatus handles GET /api/session
func (s *Server) handleSessionStatus(w http.ResponseWriter, r *http.Request) {
	if !s.requireSession(w) {
		return
	}
	writeJSON(w, http.StatusOK, s.session.Status())
}

// handleSessionLoad handles POST /api/session/load?name=file.pcm
func (s *Server) handleSessionLoad(w http.ResponseWriter, r *http.Request) {
	if !s.requireSession(w) {
		return
	}

	name := r.URL.Query().Get("name")
	if name == "" {
		var body struct {
			Name string `json:"name"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "missing file name"})
			return
		}
		name = body.Name
	}

	if err := s.session.Load(name); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.session.Status())
}

// handleSessionSeek handles POST /api/session/seek?t=seconds or ?fraction=0..1
func (s *Server) handleSessionSeek(w http.ResponseWriter, r *http.Request) {
	if !s.requireSession(w) {
		return
	}

	q := r.URL.Query()
	var err error
	switch {
	case q.Get("t") != "":
		var t float64
		if t, err = strconv.ParseFloat(q.Get("t"), 64); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "t must be a number"})
			return
		}
		_, err = s.session.Seek(t)
	case q.Get("fraction") != "":
		var f float64
		if f, err = strconv.ParseFloat(q.Get("fraction"), 64); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "fraction must be a number"})
			return
		}
		_, err = s.session.SeekFraction(f)
	default:
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "seek requires t or fraction"})
		return
	}

	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.session.Status())
}

func (s *Server) sessionAction(action func(*session.Session) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.requireSession(w) {
			return
		}
		if err := action(s.session); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, s.session.Status())
	}
}

func (s *Server) requireSession(w http.ResponseWriter) bool {
	if s.session == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "no playback session"})
		return false
	}
	return true
}

// statusFor maps domain errors onto HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, catalog.ErrInvalidName),
		errors.Is(err, waveform.ErrInvalidArgument),
		errors.Is(err, playback.ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, catalog.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, session.ErrNothingLoaded):
		return http.StatusConflict
	case errors.Is(err, decode.ErrEmpty), errors.Is(err, decode.ErrOddLength):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	code := statusFor(err)
	if code == http.StatusInternalServerError {
		log.Printf("Request failed: %v", err)
	}
	writeJSON(w, code, errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}
