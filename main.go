package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"os/user"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/MixinNetwork/mixin/logger"
	"github.com/MixinNetwork/unique/api"
	"github.com/MixinNetwork/unique/host"
	"github.com/MixinNetwork/unique/nft"
	"github.com/MixinNetwork/unique/store"
	"github.com/spf13/cobra"
)

var (
	dataDir    string
	configPath string
	logLevel   int
)

func main() {
	err := rootCmd().ExecuteContext(context.Background())
	if err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "unique",
		Short:         "Registry of uniquely identified assets",
		SilenceUsage:  true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger.SetLevel(logLevel)
		},
	}
	cmd.PersistentFlags().StringVarP(&dataDir, "data", "d", "~/.mixin/unique/data", "database directory path")
	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "~/.mixin/unique/config.toml", "configuration file path")
	cmd.PersistentFlags().IntVar(&logLevel, "log", logger.INFO, "log level")

	cmd.AddCommand(
		mintCmd(),
		transferCmd(),
		burnCmd(),
		ownerCmd(),
		assetsCmd(),
		statsCmd(),
		serveCmd(),
	)
	return cmd
}

type node struct {
	conf     *host.Configuration
	db       *store.BadgerStore
	registry *nft.Registry
	group    *host.Group
	out      io.Writer
	cancel   context.CancelFunc
}

func openNode(cmd *cobra.Command) (*node, error) {
	conf, err := host.Setup(expandHome(configPath))
	if err != nil {
		return nil, err
	}
	opts, err := nft.OptionsFromConfiguration(conf)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	db, err := store.OpenBadger(ctx, expandHome(dataDir), store.OptionsFromConfiguration(conf))
	if err != nil {
		cancel()
		return nil, err
	}
	n := &node{conf: conf, db: db, out: cmd.OutOrStdout(), cancel: cancel}
	n.registry, err = nft.NewRegistry(db, opts)
	if err != nil {
		n.Close()
		return nil, err
	}
	n.group, err = host.BuildGroup(ctx, db, conf)
	if err != nil {
		n.Close()
		return nil, err
	}
	n.group.AddWorker(nft.NewRegistryWorker(n.registry))
	return n, nil
}

func (n *node) Close() {
	n.cancel()
	err := n.db.Close()
	if err != nil {
		logger.Printf("BadgerStore.Close() => %v\n", err)
	}
}

// execute queues act, drains every pending action including act and
// prints the outcome.
func (n *node) execute(ctx context.Context, act *host.Action, requestId string) error {
	if requestId != "" {
		act.TraceId = host.UniqueTraceId(act.Caller, requestId)
	} else {
		act.TraceId = host.NewTraceId()
	}
	_, err := n.group.Submit(ctx, act)
	if err != nil {
		return err
	}
	err = n.group.Drain(ctx)
	if err != nil {
		return err
	}
	done, err := n.group.ReadAction(act.TraceId)
	if err != nil {
		return err
	}
	fmt.Fprintf(n.out, "trace: %s\n", done.TraceId)
	fmt.Fprintf(n.out, "state: %s\n", done.StateName())
	if done.ErrorCode != "" {
		fmt.Fprintf(n.out, "code: %s\n", done.ErrorCode)
		return nft.ErrorFromCode(done.ErrorCode, done.Error)
	}
	if done.Result != "" {
		fmt.Fprintf(n.out, "result: %s\n", done.Result)
	}
	return nil
}

func mintCmd() *cobra.Command {
	var caller, info, registry, id, requestId string
	cmd := &cobra.Command{
		Use:   "mint <owner>",
		Short: "Mint an asset to owner",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			n, err := openNode(cmd)
			if err != nil {
				return err
			}
			defer n.Close()
			return n.execute(ctx, &host.Action{
				Operation: host.OperationMint,
				Caller:    caller,
				Account:   args[0],
				Registry:  registry,
				AssetId:   id,
				Info:      []byte(info),
			}, requestId)
		},
	}
	cmd.Flags().StringVar(&caller, "caller", "", "calling account")
	cmd.Flags().StringVar(&info, "info", "", "asset info")
	cmd.Flags().StringVar(&registry, "registry", "", "registry id")
	cmd.Flags().StringVar(&id, "id", "", "asset id, for registries with explicit ids")
	cmd.Flags().StringVar(&requestId, "request", "", "request id for idempotent retries")
	_ = cmd.MarkFlagRequired("caller")
	return cmd
}

func transferCmd() *cobra.Command {
	var caller, registry, requestId string
	cmd := &cobra.Command{
		Use:   "transfer <asset> <to>",
		Short: "Transfer an asset to another account",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			n, err := openNode(cmd)
			if err != nil {
				return err
			}
			defer n.Close()
			return n.execute(ctx, &host.Action{
				Operation: host.OperationTransfer,
				Caller:    caller,
				Account:   args[1],
				Registry:  registry,
				AssetId:   args[0],
			}, requestId)
		},
	}
	cmd.Flags().StringVar(&caller, "caller", "", "calling account")
	cmd.Flags().StringVar(&registry, "registry", "", "registry id")
	cmd.Flags().StringVar(&requestId, "request", "", "request id for idempotent retries")
	_ = cmd.MarkFlagRequired("caller")
	return cmd
}

func burnCmd() *cobra.Command {
	var caller, registry, requestId string
	cmd := &cobra.Command{
		Use:   "burn <asset>",
		Short: "Burn an asset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			n, err := openNode(cmd)
			if err != nil {
				return err
			}
			defer n.Close()
			return n.execute(ctx, &host.Action{
				Operation: host.OperationBurn,
				Caller:    caller,
				Registry:  registry,
				AssetId:   args[0],
			}, requestId)
		},
	}
	cmd.Flags().StringVar(&caller, "caller", "", "calling account")
	cmd.Flags().StringVar(&registry, "registry", "", "registry id")
	cmd.Flags().StringVar(&requestId, "request", "", "request id for idempotent retries")
	_ = cmd.MarkFlagRequired("caller")
	return cmd
}

func ownerCmd() *cobra.Command {
	var registry string
	cmd := &cobra.Command{
		Use:   "owner <asset>",
		Short: "Show the owner and info of an asset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := nft.ParseAssetKey(args[0], registry)
			if err != nil {
				return err
			}
			n, err := openNode(cmd)
			if err != nil {
				return err
			}
			defer n.Close()
			a, owner, found := n.registry.Lookup(key)
			if !found {
				return fmt.Errorf("%w: %s", nft.ErrAssetNotFound, key)
			}
			fmt.Fprintf(n.out, "asset: %s\n", a.Key)
			fmt.Fprintf(n.out, "owner: %s\n", owner)
			fmt.Fprintf(n.out, "info: %s\n", a.Info)
			return nil
		},
	}
	cmd.Flags().StringVar(&registry, "registry", "", "registry id")
	return cmd
}

func assetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "assets <account>",
		Short: "List the assets of an account in acquisition order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := openNode(cmd)
			if err != nil {
				return err
			}
			defer n.Close()
			assets := n.registry.AssetsForAccount(args[0])
			fmt.Fprintf(n.out, "total: %d\n", len(assets))
			for _, a := range assets {
				fmt.Fprintf(n.out, "%s %s\n", a.Key, a.Info)
			}
			return nil
		},
	}
}

func statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show registry counters and limits",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := openNode(cmd)
			if err != nil {
				return err
			}
			defer n.Close()
			reg := n.registry
			fmt.Fprintf(n.out, "total: %s\n", reg.Total())
			fmt.Fprintf(n.out, "minted: %s\n", reg.Minted())
			fmt.Fprintf(n.out, "burned: %s\n", reg.Burned())
			fmt.Fprintf(n.out, "asset-limit: %s\n", reg.AssetLimit())
			fmt.Fprintf(n.out, "user-asset-limit: %d\n", reg.UserAssetLimit())
			return reg.Verify()
		},
	}
}

func serveCmd() *cobra.Command {
	var listen string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the action group and the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			cmd.SetContext(ctx)
			n, err := openNode(cmd)
			if err != nil {
				return err
			}
			defer n.Close()
			if listen == "" {
				listen = n.conf.HTTP.Listen
			}

			go n.group.Run(ctx)
			srv := api.NewServer(n.group, n.registry)
			return srv.ListenAndServe(ctx, listen)
		},
	}
	cmd.Flags().StringVar(&listen, "listen", "", "HTTP listen address, overrides the configuration")
	return cmd
}

func expandHome(path string) string {
	if strings.HasPrefix(path, "~/") {
		usr, _ := user.Current()
		return filepath.Join(usr.HomeDir, path[2:])
	}
	return path
}
