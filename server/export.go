package server

import (
	"fmt"
	"net/http"

	"github.com/domonda/go-bstable"
	"github.com/domonda/go-bstable/csvtable"
	"github.com/domonda/go-bstable/exceltable"
)

// serveExport writes all rows matching the search and sort
// query parameters as CSV or XLSX file depending on
// the format query parameter.
func (h *Handler) serveExport(w http.ResponseWriter, r *http.Request) (int, error) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "csv"
	}
	if format != "csv" && format != "xlsx" {
		return http.StatusBadRequest, fmt.Errorf("unsupported export format %q", format)
	}
	page, err := ParsePageParams(r)
	if err != nil {
		return http.StatusBadRequest, err
	}
	if !h.config.HasFetchFunc() {
		return http.StatusNotFound, bstable.ErrNoFetchFunc
	}
	page.Limit, page.Offset = 0, 0

	data, err := h.config.Fetch(r.Context(), h.config.QueryParams(page))
	if err != nil {
		return http.StatusBadGateway, err
	}
	var rows []bstable.Row
	switch d := data.(type) {
	case bstable.FetchResult:
		rows = d.Rows
	case []bstable.Row:
		rows = d
	default:
		return http.StatusInternalServerError, fmt.Errorf("can't export data of type %T", data)
	}

	filename := h.exportName() + "." + format
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	switch format {
	case "xlsx":
		w.Header().Set("Content-Type", exceltable.ContentType)
		err = exceltable.NewWriter().Write(r.Context(), w, h.config, rows)
	default:
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		err = csvtable.NewWriter().Write(r.Context(), w, h.config, rows)
	}
	if err != nil {
		return http.StatusInternalServerError, err
	}
	return http.StatusOK, nil
}

func (h *Handler) exportName() string {
	name := h.config.ElementID
	if len(name) > 0 && name[0] == '#' {
		name = name[1:]
	}
	if name == "" {
		return "table"
	}
	return name
}
