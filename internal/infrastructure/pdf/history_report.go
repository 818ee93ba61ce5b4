// Package pdf genera el informe PDF del historial de movimientos.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Título + filtros    │  Fecha de emisión            │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Fecha | Tipo | Item | Cant. | Usuario | Detalles     │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTALES: Entradas / Salidas / Movimientos                   │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/jhoicas/estoque-api/internal/application/ledger"
	"github.com/jhoicas/estoque-api/internal/domain/entity"
)

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorEntry   = &props.Color{Red: 22, Green: 120, Blue: 60}
	colorExit    = &props.Color{Red: 170, Green: 40, Blue: 40}
)

// HistoryReport datos del informe: el resultado ya filtrado y los filtros aplicados.
type HistoryReport struct {
	Title       string
	GeneratedAt time.Time
	Filter      ledger.MovementFilter
	Page        *ledger.MovementPage
}

// HistoryGenerator genera el informe con Maroto v2.
type HistoryGenerator struct {
	author string
}

// NewHistoryGenerator construye el generador. author aparece en los metadatos del PDF.
func NewHistoryGenerator(author string) *HistoryGenerator {
	return &HistoryGenerator{author: author}
}

// GenerateHistoryPDF devuelve los bytes del PDF.
func (g *HistoryGenerator) GenerateHistoryPDF(ctx context.Context, r HistoryReport) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if r.Page == nil {
		r.Page = &ledger.MovementPage{}
	}
	title := r.Title
	if title == "" {
		title = "Historial de movimientos"
	}

	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 8}).
		WithTitle(title, true).
		WithAuthor(g.author, true).
		Build()

	m := maroto.New(cfg)
	m.AddRows(headerRow(title, r.GeneratedAt, describeFilter(r.Filter)))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(tableHeaderRow())
	if len(r.Page.Movements) == 0 {
		m.AddRows(row.New(8).Add(col.New(12).Add(
			text.New("Sin movimientos para los filtros aplicados.", props.Text{Align: align.Center, Top: 2, Color: colorGray}),
		)))
	}
	for _, mv := range r.Page.Movements {
		m.AddRows(movementRow(mv))
	}
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalsRow(r.Page.Totals))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar historial: %w", err)
	}
	return doc.GetBytes(), nil
}

func headerRow(title string, at time.Time, filter string) core.Row {
	return row.New(16).Add(
		col.New(8).Add(
			text.New(title, props.Text{Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1}),
			text.New(filter, props.Text{Size: 8, Top: 9, Color: colorGray}),
		),
		col.New(4).Add(
			text.New("Emitido: "+at.Format("02/01/2006 15:04"), props.Text{
				Size: 8, Align: align.Right, Top: 2, Color: colorGray,
			}),
		),
	)
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a, Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Fecha", 2, align.Left),
		h("Tipo", 1, align.Left),
		h("Item", 3, align.Left),
		h("Cant.", 1, align.Right),
		h("Usuario", 2, align.Left),
		h("Detalles", 3, align.Left),
	)
}

func movementRow(mv entity.Movement) core.Row {
	kind, color := "Entrada", colorEntry
	if mv.Kind == entity.MovementKindExit {
		kind, color = "Salida", colorExit
	}
	cell := func(s string, size int, ps props.Text) core.Col {
		ps.Size, ps.Top, ps.Left, ps.Right = 7.5, 1, 1, 1
		return col.New(size).Add(text.New(s, ps))
	}
	return row.New(7).Add(
		cell(mv.OccurredOn.Time().Format("02/01/2006"), 2, props.Text{}),
		cell(kind, 1, props.Text{Color: color, Style: fontstyle.Bold}),
		cell(mv.ItemName, 3, props.Text{}),
		cell(formatThousands(mv.Quantity), 1, props.Text{Align: align.Right}),
		cell(mv.ActorName, 2, props.Text{}),
		cell(nonEmpty(mv.Details, "-"), 3, props.Text{Color: colorGray}),
	)
}

func totalsRow(t ledger.Totals) core.Row {
	label := func(s string) core.Component {
		return text.New(s, props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2})
	}
	value := func(s string, c *props.Color) core.Component {
		return text.New(s, props.Text{Size: 9, Align: align.Right, Right: 1, Color: c})
	}
	return row.New(18).Add(
		col.New(6),
		col.New(3).Add(
			label("Total entradas:"),
			label("Total salidas:"),
			label("Movimientos:"),
		),
		col.New(3).Add(
			value(formatThousands(t.EntryQty), colorEntry),
			value(formatThousands(t.ExitQty), colorExit),
			value(strconv.Itoa(t.Count), nil),
		),
	)
}

// describeFilter resume los filtros en una línea para el encabezado.
func describeFilter(f ledger.MovementFilter) string {
	var parts []string
	switch f.Kind {
	case entity.MovementKindEntry:
		parts = append(parts, "Tipo: entradas")
	case entity.MovementKindExit:
		parts = append(parts, "Tipo: salidas")
	}
	if f.ItemName != "" {
		parts = append(parts, "Item: "+f.ItemName)
	}
	if f.ItemID != "" {
		parts = append(parts, "Item ID: "+f.ItemID)
	}
	if !f.DateFrom.IsZero() {
		parts = append(parts, "Desde: "+f.DateFrom.Time().Format("02/01/2006"))
	}
	if !f.DateTo.IsZero() {
		parts = append(parts, "Hasta: "+f.DateTo.Time().Format("02/01/2006"))
	}
	if len(parts) == 0 {
		return "Todos los movimientos"
	}
	return strings.Join(parts, "   |   ")
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

// formatThousands inserta puntos de miles. Ej: 1000000 → "1.000.000".
func formatThousands(n int64) string {
	s := strconv.FormatInt(n, 10)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	k := len(s)
	if k <= 3 {
		if neg {
			return "-" + s
		}
		return s
	}
	buf := make([]byte, 0, k+k/3+1)
	if neg {
		buf = append(buf, '-')
	}
	for i, c := range []byte(s) {
		if i > 0 && (k-i)%3 == 0 {
			buf = append(buf, '.')
		}
		buf = append(buf, c)
	}
	return string(buf)
}
