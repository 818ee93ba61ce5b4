package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/jhoicas/estoque-api/internal/application/ledger"
	"github.com/jhoicas/estoque-api/internal/domain"
	"github.com/jhoicas/estoque-api/pkg/calendar"
)

// run abre el entorno, ejecuta fn e imprime su markdown.
func run(ctx context.Context, fn func(ctx context.Context, e *env) (string, error)) subcommands.ExitStatus {
	e, err := openEnv(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer e.Close()

	md, err := fn(ctx, e)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		if errors.Is(err, domain.ErrInvalidInput) {
			return subcommands.ExitUsageError
		}
		return subcommands.ExitFailure
	}
	if err := printMarkdown(md); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

type stockCmd struct{}

func (*stockCmd) Name() string     { return "stock" }
func (*stockCmd) Synopsis() string { return "muestra la cantidad actual de cada item" }
func (*stockCmd) Usage() string {
	return `stock

  Lista el catálogo con la cantidad en estoque y el estado de alerta.
`
}
func (*stockCmd) SetFlags(*flag.FlagSet) {}

func (c *stockCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return run(ctx, func(ctx context.Context, e *env) (string, error) {
		rows, err := e.svc.Projection.Catalog(ctx)
		if err != nil {
			return "", err
		}
		return stockMarkdown(rows), nil
	})
}

type alertsCmd struct {
	limit int
}

func (*alertsCmd) Name() string     { return "alerts" }
func (*alertsCmd) Synopsis() string { return "lista los items en o por debajo del mínimo" }
func (*alertsCmd) Usage() string {
	return `alerts [-limit n]

  Lista los items con estoque bajo, menor cantidad primero.
`
}

func (c *alertsCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.limit, "limit", 0, "máximo de items a mostrar (0 = todos)")
}

func (c *alertsCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return run(ctx, func(ctx context.Context, e *env) (string, error) {
		items, err := e.backend.Items.List(ctx)
		if err != nil {
			return "", &domain.PersistenceError{Op: "listar items", Err: err}
		}
		all, err := e.svc.Alerts.LowStockItems(ctx, items, ledger.AlertOptions{SortByQuantity: true})
		if err != nil {
			return "", err
		}
		shown := all
		if c.limit > 0 && len(shown) > c.limit {
			shown = shown[:c.limit]
		}
		return alertsMarkdown(shown, len(all)), nil
	})
}

type historyCmd struct {
	kind, from, to, item, name string
	limit                      int
}

func (*historyCmd) Name() string     { return "history" }
func (*historyCmd) Synopsis() string { return "muestra el historial combinado de movimientos" }
func (*historyCmd) Usage() string {
	return `history [-kind entrada|salida] [-from YYYY-MM-DD] [-to YYYY-MM-DD] [-item id] [-name texto] [-limit n]

  Entradas y salidas, fecha más reciente primero, con los totales del filtro.
`
}

func (c *historyCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.kind, "kind", "", "entrada, salida o vacío para ambos")
	f.StringVar(&c.from, "from", "", "fecha inicial inclusive")
	f.StringVar(&c.to, "to", "", "fecha final inclusive")
	f.StringVar(&c.item, "item", "", "ID del item")
	f.StringVar(&c.name, "name", "", "parte del nombre del item")
	f.IntVar(&c.limit, "limit", 0, "máximo de movimientos (los totales no cambian)")
}

func (c *historyCmd) filter() (ledger.MovementFilter, error) {
	kind, err := ledger.ParseMovementKind(c.kind)
	if err != nil {
		return ledger.MovementFilter{}, err
	}
	from, err := calendar.ParseOptional(c.from)
	if err != nil {
		return ledger.MovementFilter{}, domain.NewValidationError("from", err.Error())
	}
	to, err := calendar.ParseOptional(c.to)
	if err != nil {
		return ledger.MovementFilter{}, domain.NewValidationError("to", err.Error())
	}
	if !from.IsZero() && !to.IsZero() && to.Before(from) {
		return ledger.MovementFilter{}, domain.NewValidationError("to", "la fecha final es anterior a la inicial")
	}
	return ledger.MovementFilter{
		Kind:     kind,
		ItemID:   c.item,
		ItemName: c.name,
		DateFrom: from,
		DateTo:   to,
		Limit:    c.limit,
	}, nil
}

func (c *historyCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	f, err := c.filter()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return subcommands.ExitUsageError
	}
	return run(ctx, func(ctx context.Context, e *env) (string, error) {
		page, err := e.svc.History.ListMovements(ctx, f)
		if err != nil {
			return "", err
		}
		return historyMarkdown(page), nil
	})
}

type verifyCmd struct{}

func (*verifyCmd) Name() string     { return "verify" }
func (*verifyCmd) Synopsis() string { return "compara la proyección con entradas menos salidas" }
func (*verifyCmd) Usage() string {
	return `verify

  Recalcula la cantidad de cada item desde el log y reporta diferencias.
  Sale con código 1 si encuentra alguna.
`
}
func (*verifyCmd) SetFlags(*flag.FlagSet) {}

func (c *verifyCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	var drift bool
	status := run(ctx, func(ctx context.Context, e *env) (string, error) {
		report, err := e.svc.Verifier.Verify(ctx)
		if err != nil {
			return "", err
		}
		drift = !report.OK
		return verifyMarkdown(report), nil
	})
	if status == subcommands.ExitSuccess && drift {
		return subcommands.ExitFailure
	}
	return status
}

// movementFlags flags comunes de entry y exit.
type movementFlags struct {
	item  string
	qty   int64
	date  string
	note  string
	actor string
}

func (m *movementFlags) set(f *flag.FlagSet) {
	f.StringVar(&m.item, "item", "", "ID del item")
	f.Int64Var(&m.qty, "qty", 0, "cantidad (entero positivo)")
	f.StringVar(&m.date, "date", "", "fecha del movimiento, vacío = hoy")
	f.StringVar(&m.note, "note", "", "observación")
	f.StringVar(&m.actor, "actor", "", "ID del usuario que registra")
}

func (m *movementFlags) occurredOn() (calendar.Date, error) {
	d, err := calendar.ParseOptional(m.date)
	if err != nil {
		return calendar.Date{}, domain.NewValidationError("date", err.Error())
	}
	return d, nil
}

type entryCmd struct {
	movementFlags
}

func (*entryCmd) Name() string     { return "entry" }
func (*entryCmd) Synopsis() string { return "registra una entrada de estoque" }
func (*entryCmd) Usage() string {
	return `entry -item id -qty n -actor id [-date YYYY-MM-DD] [-note texto]
`
}
func (c *entryCmd) SetFlags(f *flag.FlagSet) { c.set(f) }

func (c *entryCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return run(ctx, func(ctx context.Context, e *env) (string, error) {
		on, err := c.occurredOn()
		if err != nil {
			return "", err
		}
		entry, err := e.svc.Engine.RecordEntry(ctx, ledger.EntryInput{
			ItemID:     c.item,
			Quantity:   c.qty,
			OccurredOn: on,
			Note:       c.note,
			ActorID:    c.actor,
		})
		if err != nil {
			return "", err
		}
		qty, err := e.svc.Projection.CurrentQuantity(ctx, entry.ItemID)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Entrada `%s` registrada: +%d el %s. Estoque actual: **%d**.\n", entry.ID, entry.Quantity, entry.OccurredOn, qty), nil
	})
}

type exitCmd struct {
	movementFlags
	destination, beneficiary, campaign string
}

func (*exitCmd) Name() string     { return "exit" }
func (*exitCmd) Synopsis() string { return "registra una salida de estoque" }
func (*exitCmd) Usage() string {
	return `exit -item id -qty n -actor id -destination texto [-beneficiary texto] [-campaign texto] [-date YYYY-MM-DD] [-note texto]
`
}

func (c *exitCmd) SetFlags(f *flag.FlagSet) {
	c.set(f)
	f.StringVar(&c.destination, "destination", "", "destino (obligatorio)")
	f.StringVar(&c.beneficiary, "beneficiary", "", "beneficiario")
	f.StringVar(&c.campaign, "campaign", "", "campaña")
}

func (c *exitCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return run(ctx, func(ctx context.Context, e *env) (string, error) {
		on, err := c.occurredOn()
		if err != nil {
			return "", err
		}
		exit, err := e.svc.Engine.RecordExit(ctx, ledger.ExitInput{
			ItemID:      c.item,
			Quantity:    c.qty,
			OccurredOn:  on,
			Destination: c.destination,
			Beneficiary: c.beneficiary,
			Campaign:    c.campaign,
			Note:        c.note,
			ActorID:     c.actor,
		})
		if err != nil {
			return "", err
		}
		qty, err := e.svc.Projection.CurrentQuantity(ctx, exit.ItemID)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Salida `%s` registrada: -%d el %s (%s). Estoque actual: **%d**.\n", exit.ID, exit.Quantity, exit.OccurredOn, exit.Details(), qty), nil
	})
}
