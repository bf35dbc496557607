package htmltable

import "html/template"

var (
	HeaderTemplate = template.Must(template.New("header").Parse("" +
		"<table id='{{.ID}}' data-toggle='table'" +
		"{{if .TableClass}} class='{{.TableClass}}'{{end}}" +
		"{{if .DataURL}} data-url='{{.DataURL}}'{{end}}" +
		" data-side-pagination='{{.SidePagination}}'" +
		"{{if .Pagination}} data-pagination='true'{{end}}" +
		"{{if .UniqueID}} data-unique-id='{{.UniqueID}}'{{end}}>\n" +
		"  <thead>\n" +
		"    <tr>{{range .Columns}}<th" +
		"{{if .Field}} data-field='{{.Field}}'{{end}}" +
		"{{if .Checkbox}} data-checkbox='true'{{end}}" +
		"{{if .Align}} data-align='{{.Align}}'{{end}}" +
		"{{if .VAlign}} data-valign='{{.VAlign}}'{{end}}" +
		"{{if .Width}} data-width='{{.Width}}'{{end}}" +
		"{{if .Sortable}} data-sortable='{{.Sortable}}'{{end}}" +
		">{{.Title}}</th>{{end}}</tr>\n" +
		"  </thead>\n" +
		"  <tbody>\n",
	))

	RowTemplate = template.Must(template.New("row").Parse("" +
		"    <tr>{{range $cell := .RawCells}}<td>{{$cell}}</td>{{end}}</tr>\n",
	))

	FooterTemplate = template.Must(template.New("footer").Parse("" +
		"  </tbody>\n" +
		"</table>\n",
	))
)

type TemplateContext struct {
	ID             string
	TableClass     string
	DataURL        string
	SidePagination string
	Pagination     bool
	UniqueID       string
	Columns        []ColumnContext
}

type ColumnContext struct {
	Field    string
	Title    string
	Checkbox bool
	Align    string
	VAlign   string
	Width    string
	// Sortable is empty if not set explicitly
	Sortable string
}

type RowTemplateContext struct {
	TemplateContext

	RowIndex int
	RawCells []template.HTML
}
