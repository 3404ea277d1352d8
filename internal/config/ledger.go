package config

import (
	"errors"
	"fmt"

	"github.com/babylonlabs-io/staking-ledger/internal/types"
	"github.com/babylonlabs-io/staking-ledger/pkg"
)

type GenesisAllocation struct {
	Account string `mapstructure:"account"`
	// Amount in whole tokens, decimals allowed ("12.5").
	Amount string `mapstructure:"amount"`
}

type LedgerConfig struct {
	// AddressPrefix is the bech32 human readable part of every account.
	AddressPrefix string `mapstructure:"address-prefix"`
	// PoolAccount holds the staked principal and the funded rewards.
	PoolAccount string `mapstructure:"pool-account"`
	// Funder is the only account allowed to add to the reward pool.
	Funder string `mapstructure:"funder"`
	// Genesis is minted into the in-memory token when no checkpoint exists.
	Genesis []GenesisAllocation `mapstructure:"genesis"`
}

func (cfg *LedgerConfig) Validate() error {
	if cfg.AddressPrefix == "" {
		return errors.New("missing ledger address-prefix")
	}

	if err := pkg.ValidateAddress(cfg.PoolAccount, cfg.AddressPrefix); err != nil {
		return fmt.Errorf("invalid ledger pool-account: %w", err)
	}

	if err := pkg.ValidateAddress(cfg.Funder, cfg.AddressPrefix); err != nil {
		return fmt.Errorf("invalid ledger funder: %w", err)
	}

	if cfg.Funder == cfg.PoolAccount {
		return errors.New("ledger funder must differ from pool-account")
	}

	for i, allocation := range cfg.Genesis {
		if err := pkg.ValidateAddress(allocation.Account, cfg.AddressPrefix); err != nil {
			return fmt.Errorf("invalid genesis account #%d: %w", i, err)
		}
		if allocation.Account == cfg.PoolAccount {
			return fmt.Errorf("genesis account #%d is the pool account", i)
		}
		amount, err := types.ParseAmount(allocation.Amount)
		if err != nil {
			return fmt.Errorf("invalid genesis amount #%d: %w", i, err)
		}
		if !amount.IsPositive() {
			return fmt.Errorf("genesis amount #%d must be positive", i)
		}
	}

	return nil
}
