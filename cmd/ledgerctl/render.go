package main

import (
	"fmt"
	"strings"

	"github.com/jhoicas/estoque-api/internal/application/ledger"
	"github.com/jhoicas/estoque-api/internal/domain/entity"
)

func stockMarkdown(rows []ledger.StockRow) string {
	var b strings.Builder
	b.WriteString("# Estoque actual\n\n")
	if len(rows) == 0 {
		b.WriteString("_Sin items en el catálogo._\n")
		return b.String()
	}
	b.WriteString("| Item | Categoría | Cantidad | Mínimo | Estado |\n")
	b.WriteString("|---|---|---:|---:|---|\n")
	for _, r := range rows {
		state := "ok"
		if r.LowStock {
			state = "**bajo**"
		}
		fmt.Fprintf(&b, "| %s | %s | %d %s | %d | %s |\n",
			cell(r.Item.Name), cell(r.Item.Category), r.Level.CurrentQuantity, cell(r.Item.UnitOfMeasure), r.Item.MinimumQuantity, state)
	}
	return b.String()
}

func alertsMarkdown(items []ledger.LowStockItem, total int) string {
	var b strings.Builder
	b.WriteString("# Alertas de estoque bajo\n\n")
	if total == 0 {
		b.WriteString("_Ningún item por debajo del mínimo._\n")
		return b.String()
	}
	fmt.Fprintf(&b, "%d item(s) en o por debajo del mínimo.\n\n", total)
	b.WriteString("| Item | Cantidad | Mínimo |\n|---|---:|---:|\n")
	for _, it := range items {
		fmt.Fprintf(&b, "| %s | %d | %d |\n", cell(it.Item.Name), it.Quantity, it.Item.MinimumQuantity)
	}
	if len(items) < total {
		fmt.Fprintf(&b, "\n_Mostrando %d de %d._\n", len(items), total)
	}
	return b.String()
}

func historyMarkdown(page *ledger.MovementPage) string {
	var b strings.Builder
	b.WriteString("# Historial de movimientos\n\n")
	if len(page.Movements) == 0 {
		b.WriteString("_Sin movimientos para el filtro._\n\n")
	} else {
		b.WriteString("| Fecha | Tipo | Item | Cant. | Usuario | Detalles |\n")
		b.WriteString("|---|---|---|---:|---|---|\n")
		for _, m := range page.Movements {
			fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s |\n",
				m.OccurredOn, m.Kind, cell(m.ItemName), signed(m), cell(m.ActorName), cell(m.Details))
		}
		b.WriteString("\n")
	}
	t := page.Totals
	fmt.Fprintf(&b, "**Entradas:** %d · **Salidas:** %d · **Movimientos:** %d\n", t.EntryQty, t.ExitQty, t.Count)
	return b.String()
}

func verifyMarkdown(r *ledger.VerificationReport) string {
	var b strings.Builder
	b.WriteString("# Verificación del ledger\n\n")
	fmt.Fprintf(&b, "Items revisados: %d\n\n", r.CheckedItems)
	if r.OK {
		b.WriteString("La proyección coincide con entradas menos salidas.\n")
		return b.String()
	}
	b.WriteString("| Item | Proyectado | Esperado |\n|---|---:|---:|\n")
	for _, d := range r.Discrepancies {
		fmt.Fprintf(&b, "| %s | %d | %d |\n", cell(d.ItemName), d.Projected, d.Expected)
	}
	return b.String()
}

func signed(m entity.Movement) string {
	if m.Kind == entity.MovementKindExit {
		return fmt.Sprintf("-%d", m.Quantity)
	}
	return fmt.Sprintf("+%d", m.Quantity)
}

// cell escapa el separador de columnas de markdown.
func cell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}
