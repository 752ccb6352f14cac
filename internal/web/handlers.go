package web

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"ctsales/internal/export"
	"ctsales/internal/types"
)

func (s *Server) getYears(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]interface{}{
		"data":  s.ds.Years(),
		"count": len(s.ds.Years()),
	})
}

func (s *Server) getTowns(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]interface{}{
		"data":  s.ds.Towns(),
		"count": len(s.ds.Towns()),
	})
}

func (s *Server) getResidentialTypes(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]interface{}{
		"data":  s.ds.ResidentialTypes(),
		"count": len(s.ds.ResidentialTypes()),
	})
}

func (s *Server) getState(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	state := s.binder.State()
	bounds := s.binder.Bounds()
	s.mu.Unlock()

	render.JSON(w, r, map[string]interface{}{
		"state":  state,
		"bounds": bounds,
	})
}

// stateUpdate is a partial filter-state mutation. Absent fields are left
// untouched; clearYear removes the year restriction. Both amount bounds must
// be given together.
type stateUpdate struct {
	Year             *int      `json:"year"`
	ClearYear        bool      `json:"clearYear"`
	Towns            *[]string `json:"towns"`
	ResidentialTypes *[]string `json:"residentialTypes"`
	AmountLow        *float64  `json:"amountLow"`
	AmountHigh       *float64  `json:"amountHigh"`
}

func (s *Server) updateState(w http.ResponseWriter, r *http.Request) {
	var upd stateUpdate
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		s.renderError(w, r, http.StatusBadRequest, fmt.Sprintf("decode state update: %v", err))
		return
	}
	if (upd.AmountLow == nil) != (upd.AmountHigh == nil) {
		s.renderError(w, r, http.StatusBadRequest, "amountLow and amountHigh must be set together")
		return
	}
	if upd.Year != nil && upd.ClearYear {
		s.renderError(w, r, http.StatusBadRequest, "year and clearYear are mutually exclusive")
		return
	}

	s.mu.Lock()
	if upd.Year != nil {
		s.binder.SetYear(*upd.Year)
	}
	if upd.ClearYear {
		s.binder.ClearYear()
	}
	if upd.Towns != nil {
		s.binder.SetTowns(*upd.Towns)
	}
	if upd.ResidentialTypes != nil {
		s.binder.SetResidentialTypes(*upd.ResidentialTypes)
	}
	if upd.AmountLow != nil {
		s.binder.SetAmountRange(*upd.AmountLow, *upd.AmountHigh)
	}
	state := s.binder.State()
	bounds := s.binder.Bounds()
	s.mu.Unlock()

	render.JSON(w, r, map[string]interface{}{
		"state":  state,
		"bounds": bounds,
	})
}

func (s *Server) reset(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.binder.Reset()
	state := s.binder.State()
	bounds := s.binder.Bounds()
	s.mu.Unlock()

	render.JSON(w, r, map[string]interface{}{
		"state":  state,
		"bounds": bounds,
	})
}

func (s *Server) getSankey(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	graph := s.binder.Sankey()
	s.mu.Unlock()

	render.JSON(w, r, graph)
}

func (s *Server) getMap(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	points := s.binder.MapPoints()
	s.mu.Unlock()

	render.JSON(w, r, map[string]interface{}{
		"data":  points,
		"count": len(points),
	})
}

func (s *Server) getTable(w http.ResponseWriter, r *http.Request) {
	page := 1
	if p := r.URL.Query().Get("page"); p != "" {
		n, err := strconv.Atoi(p)
		if err != nil || n < 1 {
			s.renderError(w, r, http.StatusBadRequest, "page must be a positive integer")
			return
		}
		page = n
	}

	s.mu.Lock()
	rows := s.binder.Table()
	s.mu.Unlock()

	total := len(rows)
	pages := (total + pageSize - 1) / pageSize
	start := (page - 1) * pageSize
	if start > total {
		start = total
	}
	end := start + pageSize
	if end > total {
		end = total
	}
	pageRows := rows[start:end]
	if pageRows == nil {
		pageRows = []types.SaleRecord{}
	}

	render.JSON(w, r, map[string]interface{}{
		"data":  pageRows,
		"page":  page,
		"pages": pages,
		"total": total,
	})
}

func (s *Server) exportFiltered(w http.ResponseWriter, r *http.Request) {
	format := chi.URLParam(r, "format")

	s.mu.Lock()
	rows := s.binder.Table()
	s.mu.Unlock()

	stamp := time.Now().Format("20060102-150405")
	var path string
	var err error
	switch format {
	case "csv":
		path, err = s.exporter.WriteCSV("sales-"+stamp+".csv", rows, export.CSVOptions{BOMPrefix: true})
	case "xlsx":
		path, err = s.exporter.WriteExcel("sales-"+stamp+".xlsx", rows)
	case "shp":
		path, err = s.exporter.WriteShapefile("sales-"+stamp+".shp", rows)
	default:
		s.renderError(w, r, http.StatusBadRequest, fmt.Sprintf("unsupported export format %q", format))
		return
	}
	if err != nil {
		s.logger.Error("export failed",
			slog.String("format", format),
			slog.String("error", err.Error()))
		s.renderError(w, r, http.StatusInternalServerError, "export failed")
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"path":   path,
		"rows":   len(rows),
		"format": format,
	})
}

func (s *Server) renderError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	render.Status(r, status)
	render.JSON(w, r, map[string]interface{}{
		"error":  msg,
		"status": status,
	})
}
