package main

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/code-payments/code-multisig/pkg/ledger"
	"github.com/code-payments/code-multisig/pkg/ledger/memory"
	"github.com/code-payments/code-multisig/pkg/ledger/postgres"
	"github.com/code-payments/code-multisig/pkg/metrics"
	"github.com/code-payments/code-multisig/pkg/processor"
	"github.com/code-payments/code-multisig/pkg/runtime"
	"github.com/code-payments/code-multisig/pkg/solana"
	"github.com/code-payments/code-multisig/pkg/solana/multisig"

	pg "github.com/code-payments/code-multisig/pkg/database/postgres"
)

const (
	storeMemory   = "memory"
	storePostgres = "postgres"

	simulationFunding = 1_000_000_000
)

type simulation struct {
	Members int
	Add     int
	Remove  int
}

func (c *cli) simulateCommand() *cobra.Command {
	var sim simulation

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Provision a multisig and edit its roster against a local ledger",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			program, err := c.config.programID()
			if err != nil {
				return err
			}

			store, closeFn, err := c.openStore()
			if err != nil {
				return err
			}
			defer closeFn()

			ctx, end := metrics.StartTransaction(cmd.Context(), c.metricsProvider, "simulate")
			defer end()

			if err := runSimulation(ctx, cmd.OutOrStdout(), store, program, c.config.SeparateConfig, sim); err != nil {
				return err
			}

			if len(c.config.MetricsListenAddress) > 0 {
				return serveMetrics(cmd.Context(), c.config.MetricsListenAddress)
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.IntVar(&sim.Members, "members", 3, "initial roster size, including the creator")
	flags.IntVar(&sim.Add, "add", 1, "members added by the admin after provisioning")
	flags.IntVar(&sim.Remove, "remove", 1, "members removed from the end of the roster afterwards")
	flags.String("store", defaultConfig.Store, "ledger store: memory or postgres")
	flags.String("postgres-host", "", "postgres host")
	flags.Int("postgres-port", defaultConfig.PostgresPort, "postgres port")
	flags.String("postgres-user", "", "postgres user")
	flags.String("postgres-password", "", "postgres password")
	flags.String("postgres-db-name", "", "postgres database name")
	flags.String("metrics-listen-address", "", "serve prometheus metrics at this address once the simulation completes")
	bindFlags(
		c.v,
		flags,
		"store",
		"postgres-host",
		"postgres-port",
		"postgres-user",
		"postgres-password",
		"postgres-db-name",
		"metrics-listen-address",
	)

	return cmd
}

func (c *cli) openStore() (ledger.Store, func(), error) {
	switch c.config.Store {
	case storeMemory:
		return memory.New(), func() {}, nil
	case storePostgres:
		db, err := pg.New(&pg.Config{
			User:     c.config.PostgresUser,
			Password: c.config.PostgresPassword,
			Host:     c.config.PostgresHost,
			Port:     c.config.PostgresPort,
			DbName:   c.config.PostgresDbName,
		})
		if err != nil {
			return nil, nil, errors.Wrap(err, "failed to connect to postgres")
		}
		return postgres.New(db), func() { db.Close() }, nil
	}
	return nil, nil, errors.Errorf("unknown store %q", c.config.Store)
}

func runSimulation(ctx context.Context, w io.Writer, store ledger.Store, program ed25519.PublicKey, separateConfig bool, sim simulation) error {
	if sim.Members < 1 {
		return errors.New("the roster must include the creator")
	}
	if sim.Members+sim.Add > multisig.MaxMembers {
		return errors.Errorf("roster cannot exceed %d members", multisig.MaxMembers)
	}
	if sim.Remove >= sim.Members+sim.Add {
		return errors.New("cannot remove the creator")
	}

	bank := runtime.NewBank(store, runtime.WithEnvConfigs())
	if err := processor.New(processor.WithStaticConfig(program, separateConfig)).Register(ctx, bank); err != nil {
		return err
	}

	_, creator, err := ed25519.GenerateKey(nil)
	if err != nil {
		return err
	}
	creatorKey := creator.Public().(ed25519.PublicKey)

	if err := bank.Airdrop(ctx, creatorKey, simulationFunding); err != nil {
		return err
	}

	derived, err := deriveAccounts(program, creatorKey)
	if err != nil {
		return err
	}

	accounts := &multisig.InitMultisigInstructionAccounts{
		Creator:  creatorKey,
		Multisig: derived.Multisig,
		Treasury: derived.Treasury,
	}
	if separateConfig {
		accounts.Config = derived.Config
	}

	members := []ed25519.PublicKey{creatorKey}
	for i := 1; i < sim.Members; i++ {
		key, _, err := ed25519.GenerateKey(nil)
		if err != nil {
			return err
		}
		members = append(members, key)
	}

	fmt.Fprintf(w, "creator: %s\n", base58.Encode(creatorKey))

	execute := func(step string, ix solana.Instruction) error {
		result, err := submit(ctx, bank, creator, ix)
		if err != nil {
			return errors.Wrapf(err, "%s failed", step)
		}
		fmt.Fprintf(w, "%s: %s\n", step, result.ID)
		return nil
	}

	err = execute("init", multisig.NewInitMultisigInstruction(program, accounts, &multisig.InitMultisigInstructionArgs{
		MinThreshold: uint8((sim.Members + 1) / 2),
		MaxExpiry:    uint64((24 * time.Hour).Seconds()),
		Members:      members,
	}))
	if err != nil {
		return err
	}

	err = execute("claim_admin", multisig.NewClaimAdminInstruction(
		program,
		&multisig.ClaimAdminInstructionAccounts{Creator: creatorKey, Multisig: derived.Multisig},
		&multisig.ClaimAdminInstructionArgs{MemberIndex: 0},
	))
	if err != nil {
		return err
	}

	updateAccounts := &multisig.UpdateMembersInstructionAccounts{
		Payer:    creatorKey,
		Creator:  creatorKey,
		Multisig: derived.Multisig,
		Treasury: derived.Treasury,
		Config:   accounts.Config,
	}

	for i := 0; i < sim.Add; i++ {
		key, _, err := ed25519.GenerateKey(nil)
		if err != nil {
			return err
		}

		err = execute("add", multisig.NewUpdateMembersInstruction(program, updateAccounts, &multisig.UpdateMembersInstructionArgs{
			UpdateType:  multisig.UpdateTypeAdd,
			MemberKey:   key,
			Permission:  multisig.PermissionVote,
			IsActive:    true,
			MemberIndex: uint8(len(members)),
		}))
		if err != nil {
			return err
		}
		members = append(members, key)
	}

	for i := 0; i < sim.Remove; i++ {
		last := len(members) - 1

		err = execute("remove", multisig.NewUpdateMembersInstruction(program, updateAccounts, &multisig.UpdateMembersInstructionArgs{
			UpdateType:  multisig.UpdateTypeRemove,
			MemberKey:   members[last],
			MemberIndex: uint8(last),
		}))
		if err != nil {
			return err
		}
		members = members[:last]
	}

	return inspect(ctx, w, bank, solana.CommitmentFinalized, program, creatorKey, separateConfig)
}

func submit(ctx context.Context, bank *runtime.Bank, signer ed25519.PrivateKey, ix solana.Instruction) (*runtime.Result, error) {
	var blockhash solana.Blockhash
	if _, err := rand.Read(blockhash[:]); err != nil {
		return nil, err
	}

	txn := solana.NewTransaction(signer.Public().(ed25519.PublicKey), ix)
	txn.SetBlockhash(blockhash)
	if err := txn.Sign(signer); err != nil {
		return nil, err
	}

	return bank.ExecuteTransaction(ctx, &txn)
}

// serveMetrics blocks until ctx is done or the process is interrupted.
func serveMetrics(ctx context.Context, address string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:              address,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), defaultShutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
