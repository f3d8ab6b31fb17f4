package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ardanlabs/conf/v3"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ardanlabs/gambit/foundation/blockchain/address"
	"github.com/ardanlabs/gambit/foundation/blockchain/chain"
	"github.com/ardanlabs/gambit/foundation/blockchain/explorer"
	"github.com/ardanlabs/gambit/foundation/blockchain/miner"
	"github.com/ardanlabs/gambit/foundation/blockchain/p2p"
	"github.com/ardanlabs/gambit/foundation/blockchain/rpc"
	gambitconfig "github.com/ardanlabs/gambit/foundation/config"
	"github.com/ardanlabs/gambit/foundation/events"
	"github.com/ardanlabs/gambit/foundation/logger"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the node: chain core, P2P gossip, JSON-RPC, miner, and explorer",
	RunE: func(cmd *cobra.Command, args []string) error {
		log, err := logger.New("GAMBITD")
		if err != nil {
			return err
		}
		defer log.Sync()

		if err := runNode(log); err != nil {
			log.Errorw("startup", "ERROR", err)
			return err
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runNode(log *zap.SugaredLogger) error {

	// =========================================================================
	// Configuration

	cfg := gambitconfig.Config{
		Version: conf.Version{
			Build: Build,
			Desc:  "copyright information here",
		},
	}

	const prefix = "GAMBITD"
	help, err := gambitconfig.Parse(prefix, &cfg)
	if err != nil {
		if errors.Is(err, conf.ErrHelpWanted) {
			fmt.Println(help)
			return nil
		}
		return fmt.Errorf("parsing config: %w", err)
	}

	// =========================================================================
	// App Starting

	fmt.Println(`   ____    _    __  __ ____ ___ _____`)
	fmt.Println(`  / ___|  / \  |  \/  | __ )_ _|_   _|`)
	fmt.Println(` | |  _  / _ \ | |\/| |  _ \| |  | |  `)
	fmt.Println(` | |_| |/ ___ \| |  | | |_) | |  | |  `)
	fmt.Println(`  \____/_/   \_\_|  |_|____/___| |_|  `)
	fmt.Print("\n")

	log.Infow("starting service", "version", Build)
	defer log.Infow("shutdown complete")

	out, err := conf.String(&cfg)
	if err != nil {
		return fmt.Errorf("generating config for output: %w", err)
	}
	log.Infow("startup", "config", out)

	// =========================================================================
	// Blockchain Support

	evts := events.New()
	ev := func(v string, args ...any) {
		s := fmt.Sprintf(v, args...)
		log.Infow(s, "traceid", "00000000-0000-0000-0000-000000000000")
		evts.SendEvent("log", s)
	}

	genesisBalances := map[address.Address]uint64{}
	if cfg.Chain.PremineAddress != "" {
		addr, err := address.FromHex(cfg.Chain.PremineAddress)
		if err != nil {
			return fmt.Errorf("parsing premine address: %w", err)
		}
		genesisBalances[addr] = cfg.Chain.PremineBalance
	}

	bc := chain.New(cfg.Chain.ChainID, genesisBalances)

	// =========================================================================
	// P2P Support

	node := p2p.New(bc, ev)
	if err := node.Listen(cfg.P2P.ListenHost); err != nil {
		return fmt.Errorf("starting p2p listener: %w", err)
	}
	log.Infow("startup", "status", "p2p listener started", "host", node.Addr())

	for _, seed := range cfg.P2P.Seeds {
		if err := node.ConnectTo(seed); err != nil {
			log.Infow("startup", "status", "unable to connect to seed", "seed", seed, "ERROR", err)
			continue
		}
		log.Infow("startup", "status", "connected to seed", "seed", seed)
	}

	// =========================================================================
	// Miner Support

	miningWorker := miner.New(bc, node, cfg.Miner.Interval, ev, nil)
	if cfg.Miner.Enabled {
		miningWorker.Start()
		log.Infow("startup", "status", "miner started", "interval", cfg.Miner.Interval)
	}

	// =========================================================================
	// RPC Support

	rpcServer := rpc.New(bc, miningWorker)
	if err := rpcServer.Listen(cfg.RPC.ListenHost); err != nil {
		return fmt.Errorf("starting rpc listener: %w", err)
	}
	log.Infow("startup", "status", "rpc listener started", "host", rpcServer.Addr())

	// =========================================================================
	// Explorer Support

	reg := prometheus.NewRegistry()
	explorerServer := explorer.New(bc, evts, reg, "*")

	explorerHTTP := http.Server{
		Addr:         cfg.Explorer.ListenHost,
		Handler:      explorerServer,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     zap.NewStdLog(log.Desugar()),
	}

	serverErrors := make(chan error, 1)
	go func() {
		log.Infow("startup", "status", "explorer started", "host", explorerHTTP.Addr)
		serverErrors <- explorerHTTP.ListenAndServe()
	}()

	// =========================================================================
	// Shutdown

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		log.Infow("shutdown", "status", "shutdown started", "signal", sig)
		defer log.Infow("shutdown", "status", "shutdown complete", "signal", sig)

		log.Infow("shutdown", "status", "stopping miner")
		miningWorker.Stop()

		log.Infow("shutdown", "status", "stopping p2p node")
		node.Stop()

		log.Infow("shutdown", "status", "stopping rpc listener")
		rpcServer.Stop()

		log.Infow("shutdown", "status", "shutdown web socket channels")
		evts.Shutdown()

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
		defer cancel()

		if err := explorerHTTP.Shutdown(ctx); err != nil {
			explorerHTTP.Close()
			return fmt.Errorf("could not stop explorer gracefully: %w", err)
		}
	}

	return nil
}
