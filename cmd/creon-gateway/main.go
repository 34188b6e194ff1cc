package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ethereum/go-ethereum/ethclient"
	"go.uber.org/zap"

	"github.com/CreonHQ/creon/pkg/config"
	"github.com/CreonHQ/creon/pkg/gateway"
	"github.com/CreonHQ/creon/pkg/ledger"
	"github.com/CreonHQ/creon/pkg/logging"
	"github.com/CreonHQ/creon/pkg/platform"
	"github.com/CreonHQ/creon/pkg/storage"
	"github.com/CreonHQ/creon/pkg/wallet"
)

func main() {
	configPath := flag.String("config", defaultConfigPath(), "path to config file")
	listen := flag.String("listen", "", "override gateway listen address")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *listen != "" {
		cfg.Gateway.ListenAddr = *listen
	}

	logger, err := logging.NewLoggerWithLevel(logging.ComponentGateway, cfg.Logging.EnableColors, cfg.Logging.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}

	store := storage.NewClient(storage.Config{
		ClusterAPIURL:     cfg.Storage.ClusterAPIURL,
		APIURL:            cfg.Storage.APIURL,
		Timeout:           cfg.Storage.Timeout,
		ReplicationFactor: cfg.Storage.ReplicationFactor,
	}, logger)

	var sealer *storage.Sealer
	if cfg.Storage.SealPaidContent {
		sealer, err = storage.NewSealer(cfg.Storage.SealKeyHex)
		if err != nil {
			logger.ComponentError(logging.ComponentGateway, "invalid seal key", zap.Error(err))
			os.Exit(1)
		}
	}

	rpc, err := ethclient.Dial(cfg.Ledger.RPCURL)
	if err != nil {
		logger.ComponentError(logging.ComponentGateway, "failed to dial ledger rpc", zap.Error(err))
		os.Exit(1)
	}
	defer rpc.Close()

	provider, err := wallet.LoadKeystoreProvider(cfg.Wallet.KeystorePath, cfg.Ledger.ChainID, rpc)
	if err != nil {
		logger.ComponentError(logging.ComponentGateway, "failed to load keystore wallet", zap.Error(err))
		os.Exit(1)
	}

	wallets := wallet.NewManager(logger)
	wallets.Register(provider)

	client := platform.NewClient(platform.Options{
		Config:  cfg,
		Logger:  logger,
		Wallets: wallets,
		Pinner:  store,
		Sealer:  sealer,
		Signers: map[wallet.Kind]ledger.Signer{
			wallet.KindMetaMask: provider,
		},
	})
	defer client.Close()

	gw := gateway.New(cfg.Gateway, client, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := gw.Start(ctx); err != nil {
		logger.ComponentError(logging.ComponentGateway, "gateway stopped", zap.Error(err))
		os.Exit(1)
	}
	logger.ComponentInfo(logging.ComponentGateway, "shutdown complete")
}

func defaultConfigPath() string {
	if p := os.Getenv("CREON_CONFIG"); p != "" {
		return p
	}
	return "configs/creon.yaml"
}
