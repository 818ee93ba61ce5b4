package ledger

import (
	"context"
	"sort"

	"github.com/jhoicas/estoque-api/internal/domain"
	"github.com/jhoicas/estoque-api/internal/domain/repository"
)

// Discrepancy item cuya proyección no coincide con el log.
type Discrepancy struct {
	ItemID    string `json:"item_id"`
	ItemName  string `json:"item_name"`
	Projected int64  `json:"projected"`
	Expected  int64  `json:"expected"` // Σ entradas - Σ salidas
}

// VerificationReport resultado de Verify.
type VerificationReport struct {
	CheckedItems  int           `json:"checked_items"`
	Discrepancies []Discrepancy `json:"discrepancies"`
	OK            bool          `json:"ok"`
}

// Verifier recalcula el saldo de cada item desde el log y lo compara con la proyección.
type Verifier struct {
	tx    TxRunner
	items ItemCatalog
}

// NewVerifier construye el verificador.
func NewVerifier(tx TxRunner, items ItemCatalog) *Verifier {
	return &Verifier{tx: tx, items: items}
}

// Verify lee sumas y proyección en una misma lectura consistente.
// Un saldo proyectado negativo siempre es discrepancia.
func (v *Verifier) Verify(ctx context.Context) (*VerificationReport, error) {
	var inSums, outSums map[string]int64
	projected := make(map[string]int64)

	err := v.tx.View(ctx, func(entries repository.EntryRepository, exits repository.ExitRepository, stock repository.StockRepository) error {
		var err error
		if inSums, err = entries.SumByItem(ctx); err != nil {
			return err
		}
		if outSums, err = exits.SumByItem(ctx); err != nil {
			return err
		}
		levels, err := stock.List(ctx)
		if err != nil {
			return err
		}
		for _, l := range levels {
			projected[l.ItemID] = l.CurrentQuantity
		}
		return nil
	})
	if err != nil {
		return nil, &domain.PersistenceError{Op: "verificar ledger", Err: err}
	}

	items, err := v.items.List(ctx)
	if err != nil {
		return nil, &domain.PersistenceError{Op: "listar items", Err: err}
	}
	names := make(map[string]string, len(items))
	for _, it := range items {
		names[it.ID] = it.Name
	}

	ids := make(map[string]struct{}, len(projected))
	for id := range projected {
		ids[id] = struct{}{}
	}
	for id := range inSums {
		ids[id] = struct{}{}
	}
	for id := range outSums {
		ids[id] = struct{}{}
	}

	report := &VerificationReport{CheckedItems: len(ids), Discrepancies: []Discrepancy{}}
	for id := range ids {
		expected := inSums[id] - outSums[id]
		got := projected[id]
		if got != expected || got < 0 {
			report.Discrepancies = append(report.Discrepancies, Discrepancy{
				ItemID:    id,
				ItemName:  lookupName(names, id, UnknownItemName),
				Projected: got,
				Expected:  expected,
			})
		}
	}
	sort.Slice(report.Discrepancies, func(i, j int) bool {
		return report.Discrepancies[i].ItemID < report.Discrepancies[j].ItemID
	})
	report.OK = len(report.Discrepancies) == 0
	return report, nil
}
