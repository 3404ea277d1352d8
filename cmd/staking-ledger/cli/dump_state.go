package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/babylonlabs-io/staking-ledger/internal/config"
	"github.com/babylonlabs-io/staking-ledger/internal/db"
	"github.com/babylonlabs-io/staking-ledger/internal/types"
)

func DumpStateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dump-state",
		Short: "Prints the last persisted ledger checkpoint as JSON",
		Args:  cobra.ExactArgs(0),
		RunE:  dumpState,
	}

	cmd.Flags().Duration("timeout", 30*time.Second, "Database timeout")

	return cmd
}

type stakerDump struct {
	Account    string `json:"account"`
	Principal  string `json:"principal"`
	LastUpdate int64  `json:"lastUpdate"`
	FirstStake int64  `json:"firstStake"`
}

type stateDump struct {
	CreatedAt        time.Time         `json:"createdAt"`
	TotalStaked      string            `json:"totalStaked"`
	AvailableRewards string            `json:"availableRewards"`
	RewardShortfall  string            `json:"rewardShortfall"`
	Stakers          []stakerDump      `json:"stakers"`
	Balances         map[string]string `json:"balances"`
}

func dumpState(cmd *cobra.Command, _ []string) error {
	timeout, err := cmd.Flags().GetDuration("timeout")
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	cfg, err := config.New(GetConfigPath())
	if err != nil {
		return err
	}

	dbClient, err := db.New(ctx, cfg.Db)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer dbClient.Close(context.WithoutCancel(ctx))

	doc, err := dbClient.GetLatestCheckpoint(ctx)
	if err != nil {
		return fmt.Errorf("failed to load ledger checkpoint: %w", err)
	}

	state, token, err := doc.ToLedgerState()
	if err != nil {
		return err
	}

	dump := stateDump{
		CreatedAt:        time.Unix(doc.CreatedAt, 0).UTC(),
		TotalStaked:      types.FormatAmount(state.Pool.TotalStaked),
		AvailableRewards: types.FormatAmount(state.Pool.AvailableRewards),
		RewardShortfall:  types.FormatAmount(state.Pool.RewardShortfall),
		Stakers:          make([]stakerDump, 0, len(doc.StakeRecords)),
		Balances:         make(map[string]string, len(token.Balances)),
	}
	for _, record := range doc.StakeRecords {
		r := state.Records[record.Account]
		dump.Stakers = append(dump.Stakers, stakerDump{
			Account:    record.Account,
			Principal:  types.FormatAmount(r.Principal),
			LastUpdate: r.LastUpdate,
			FirstStake: r.FirstStake,
		})
	}
	for account, balance := range token.Balances {
		dump.Balances[account] = types.FormatAmount(balance)
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(dump)
}
