package memory_test

import (
	"context"
	"testing"

	"github.com/jhoicas/estoque-api/internal/domain/entity"
	"github.com/jhoicas/estoque-api/internal/infrastructure/ledgertest"
	"github.com/jhoicas/estoque-api/internal/infrastructure/memory"
)

func TestStoreContract(t *testing.T) {
	ledgertest.Run(t, func(t *testing.T) ledgertest.Backend {
		s := memory.NewStore()
		return ledgertest.Backend{
			Items:    s.Items(),
			Entries:  s.Entries(),
			Exits:    s.Exits(),
			Stock:    s.Stock(),
			Profiles: s.Profiles(),
			Tx:       s,
			PutProfile: func(_ context.Context, p *entity.Profile) error {
				s.PutProfile(p)
				return nil
			},
		}
	})
}
