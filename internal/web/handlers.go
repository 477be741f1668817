package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"meetcal/internal/capture"
	"meetcal/internal/ics"
	"meetcal/internal/importer"
	"meetcal/internal/layout"
	appLog "meetcal/internal/log"
	"meetcal/internal/model"
	"meetcal/internal/schedule"
	"meetcal/internal/workbook"
)

var errNoWindow = errors.New("no meetings imported yet; pass year and month to pick a week")

// allowedExtension reports whether name looks like an Excel workbook.
func allowedExtension(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx", ".xlsm":
		return true
	default:
		return false
	}
}

// uploadedWorkbook decodes the multipart "file" field. On failure it has
// already written the response.
func uploadedWorkbook(w http.ResponseWriter, r *http.Request) (*workbook.Workbook, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, hdr, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "expected a multipart upload in field \"file\"")
		return nil, false
	}
	defer file.Close()

	if !allowedExtension(hdr.Filename) {
		writeError(w, http.StatusBadRequest, "only .xlsx and .xlsm files are accepted")
		return nil, false
	}

	wb, err := workbook.Decode(file)
	if err != nil {
		appLog.Warn("uploaded workbook unreadable", "filename", hdr.Filename, "err", err)
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return nil, false
	}
	return wb, true
}

type importResponse struct {
	Records   []model.Meeting   `json:"records"`
	DayLabels []string          `json:"day_labels"`
	Window    *model.WeekWindow `json:"window"`
}

// handleImport replaces the meeting set with the uploaded workbook. Any
// failure leaves the current set untouched.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	wb, ok := uploadedWorkbook(w, r)
	if !ok {
		return
	}

	res, err := s.store.Import(wb, s.importOptions())
	if err != nil {
		if !errors.Is(err, importer.ErrImport) {
			appLog.Error("import failed unexpectedly", err)
		}
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	resp := importResponse{Records: res.Records, DayLabels: res.DayLabels}
	if window, ok := s.store.Window(); ok {
		resp.Window = &window
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleImportPreview(w http.ResponseWriter, r *http.Request) {
	wb, ok := uploadedWorkbook(w, r)
	if !ok {
		return
	}

	opts := s.importOptions()
	opts.Location = s.cfg.Location()
	preview, err := importer.BuildPreview(wb, opts, parseIntDefault(r.URL.Query().Get("rows"), importer.DefaultPreviewRows))
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, preview)
}

func (s *Server) handleListMeetings(w http.ResponseWriter, _ *http.Request) {
	meetings := s.store.List()
	if meetings == nil {
		meetings = []model.Meeting{}
	}
	writeJSON(w, http.StatusOK, meetings)
}

func (s *Server) handleAddMeeting(w http.ResponseWriter, r *http.Request) {
	var in schedule.NewMeeting
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	m, err := s.store.Add(in)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

func (s *Server) handleICS(w http.ResponseWriter, _ *http.Request) {
	body := ics.Export(s.store.List(), ics.Options{Name: "meetcal"})
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="meetings.ics"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(body))
}

// resolveWindow picks the requested week of a month (?year=&month=&week=)
// or, without those, the window of the last import.
func (s *Server) resolveWindow(r *http.Request) (model.WeekWindow, int, error) {
	q := r.URL.Query()
	if q.Get("year") != "" || q.Get("month") != "" {
		year := parseIntDefault(q.Get("year"), -1)
		month := parseIntDefault(q.Get("month"), -1)
		week := parseIntDefault(q.Get("week"), 1)
		window, err := model.WindowForMonth(year, time.Month(month), week, s.cfg.Location())
		if err != nil {
			return model.WeekWindow{}, http.StatusBadRequest, err
		}
		return window, http.StatusOK, nil
	}

	window, ok := s.store.Window()
	if !ok {
		return model.WeekWindow{}, http.StatusNotFound, errNoWindow
	}
	return window, http.StatusOK, nil
}

type weekResponse struct {
	Window     model.WeekWindow `json:"window"`
	DayLabels  []string         `json:"day_labels"`
	GridLabels []string         `json:"grid_labels"`
	SlotHeight float64          `json:"slot_height"`
	Days       []layout.Day     `json:"days"`
}

func (s *Server) handleWeek(w http.ResponseWriter, r *http.Request) {
	window, status, err := s.resolveWindow(r)
	if err != nil {
		writeError(w, status, err.Error())
		return
	}

	labels := s.store.DayLabels()
	days := layout.Week(window, labels, s.store.List(), s.grid)
	writeJSON(w, http.StatusOK, weekResponse{
		Window:     window,
		DayLabels:  labels,
		GridLabels: s.grid.Labels(),
		SlotHeight: s.grid.SlotHeight,
		Days:       days,
	})
}

func (s *Server) handleDates(w http.ResponseWriter, r *http.Request) {
	window, status, err := s.resolveWindow(r)
	if err != nil {
		writeError(w, status, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, schedule.AvailableDates(window, s.store.DayLabels()))
}

func (s *Server) handleTimeOptions(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, schedule.TimeOptions())
}

type categoryDTO struct {
	Label      string `json:"label"`
	Primary    string `json:"primary"`
	Background string `json:"background"`
	TextColor  string `json:"text_color"`
}

func (s *Server) handleCategories(w http.ResponseWriter, _ *http.Request) {
	out := make([]categoryDTO, 0, len(model.Categories()))
	for _, c := range model.Categories() {
		colors := c.Colors()
		out = append(out, categoryDTO{
			Label:      c.Label(),
			Primary:    colors.Primary,
			Background: colors.Background,
			TextColor:  colors.TextColor(),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) captureOptions() capture.Options {
	c := s.cfg.Capture
	return capture.Options{
		URL:        c.URL,
		OutputPath: c.Output,
		Width:      c.Width,
		Height:     c.Height,
		Timeout:    time.Duration(c.TimeoutSeconds) * time.Second,
	}
}

// handleCapture screenshots the renderer into the preview file.
func (s *Server) handleCapture(w http.ResponseWriter, r *http.Request) {
	if !s.captureMu.TryLock() {
		writeError(w, http.StatusConflict, "a capture is already running")
		return
	}
	defer s.captureMu.Unlock()

	opts := s.captureOptions()
	if err := s.capturer.Capture(r.Context(), opts); err != nil {
		appLog.Error("preview capture failed", err, "url", opts.URL)
		writeError(w, http.StatusBadGateway, "capture failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"output":      opts.OutputPath,
		"captured_at": time.Now(),
	})
}

// handlePreview serves the last captured PNG.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	http.ServeFile(w, r, s.cfg.Capture.Output)
}
