package services

import (
	"github.com/babylonlabs-io/staking-ledger/internal/clients/tokenclient"
	"github.com/babylonlabs-io/staking-ledger/internal/config"
	"github.com/babylonlabs-io/staking-ledger/internal/db"
	"github.com/babylonlabs-io/staking-ledger/internal/ledger"
	"github.com/babylonlabs-io/staking-ledger/internal/queue"
)

type Service struct {
	cfg       *config.Config
	db        db.DbInterface
	ledger    *ledger.Ledger
	token     *tokenclient.MemoryToken
	publisher queue.Publisher
}

func NewService(
	cfg *config.Config,
	db db.DbInterface,
	ledger *ledger.Ledger,
	token *tokenclient.MemoryToken,
	publisher queue.Publisher,
) *Service {
	return &Service{
		cfg:       cfg,
		db:        db,
		ledger:    ledger,
		token:     token,
		publisher: publisher,
	}
}

func (s *Service) Config() *config.Config {
	return s.cfg
}
