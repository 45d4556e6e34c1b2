package httpadapter

import (
	"net/http"
	"strconv"
)

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	writeResponse(w, r, http.StatusOK, s.engine.State())
}

func (s *Server) handlePlay(w http.ResponseWriter, r *http.Request) {
	if err := s.engine.Play(); err != nil {
		writeError(w, r, err)
		return
	}
	writeResponse(w, r, http.StatusOK, s.engine.State().Playback)
}

func (s *Server) handlePause(w http.ResponseWriter, r *http.Request) {
	s.engine.Pause()
	writeResponse(w, r, http.StatusOK, s.engine.State().Playback)
}

func (s *Server) handleSeek(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(r.URL.Query().Get("index"))
	if err != nil {
		writeBadParam(w, r, "index")
		return
	}
	if err := s.engine.Seek(index); err != nil {
		writeError(w, r, err)
		return
	}
	writeResponse(w, r, http.StatusOK, s.engine.State().Playback)
}

func (s *Server) handleSpeed(w http.ResponseWriter, r *http.Request) {
	m, err := strconv.ParseFloat(r.URL.Query().Get("multiplier"), 64)
	if err != nil {
		writeBadParam(w, r, "multiplier")
		return
	}
	if err := s.engine.SetSpeed(m); err != nil {
		writeError(w, r, err)
		return
	}
	writeResponse(w, r, http.StatusOK, s.engine.State().Playback)
}

func (s *Server) handleResample(w http.ResponseWriter, r *http.Request) {
	hours, err := strconv.Atoi(r.URL.Query().Get("hours"))
	if err != nil {
		writeBadParam(w, r, "hours")
		return
	}
	if err := s.engine.SetResampleInterval(r.Context(), hours); err != nil {
		s.logger.Warn("resample request failed", "error", err, "resample_hours", hours)
		writeError(w, r, err)
		return
	}
	writeResponse(w, r, http.StatusOK, s.engine.State())
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	if err := s.engine.Reload(r.Context()); err != nil {
		s.logger.Warn("reload request failed", "error", err)
		writeError(w, r, err)
		return
	}
	writeResponse(w, r, http.StatusOK, s.engine.State())
}

// handleFrame serves the latest frame and attaches the map layer. Clients
// pass since=<version> to get 304 until a newer frame exists.
func (s *Server) handleFrame(w http.ResponseWriter, r *http.Request) {
	s.frames.Attach()

	frame, version, ok := s.frames.Latest()
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if since, err := strconv.ParseUint(r.URL.Query().Get("since"), 10, 64); err == nil && since >= version {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("X-Frame-Version", strconv.FormatUint(version, 10))
	writeResponse(w, r, http.StatusOK, frame)
}

func (s *Server) handleHover(w http.ResponseWriter, r *http.Request) {
	reading, err := s.engine.OnFeatureHover(r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeResponse(w, r, http.StatusOK, reading)
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	series, err := s.engine.OnFeatureClick(r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeResponse(w, r, http.StatusOK, series)
}

func (s *Server) handleInspector(w http.ResponseWriter, r *http.Request) {
	resample := 1
	if v := r.URL.Query().Get("resample"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeBadParam(w, r, "resample")
			return
		}
		resample = n
	}
	series, ok := s.engine.InspectorSeries(resample)
	if !ok {
		writeResponse(w, r, http.StatusNotFound, errorResponse{Error: "no feature selected"})
		return
	}
	writeResponse(w, r, http.StatusOK, series)
}

type toggleResponse struct {
	Variable string `json:"variable"`
	Visible  bool   `json:"visible"`
}

func (s *Server) handleToggle(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	visible, err := s.engine.ToggleVariable(name)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeResponse(w, r, http.StatusOK, toggleResponse{Variable: name, Visible: visible})
}

func (s *Server) handleNotice(w http.ResponseWriter, r *http.Request) {
	notice, ok := s.engine.Notice()
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeResponse(w, r, http.StatusOK, notice)
}

func writeBadParam(w http.ResponseWriter, r *http.Request, name string) {
	writeResponse(w, r, http.StatusBadRequest, errorResponse{Error: "invalid query parameter: " + name})
}
