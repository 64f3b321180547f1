package commands

import (
	"context"
	"fmt"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/costlens/costlens/pkg/analyzer"
	"github.com/costlens/costlens/pkg/history"
	"github.com/costlens/costlens/pkg/server"
	"github.com/costlens/costlens/pkg/telemetry"
	"github.com/costlens/costlens/pkg/version"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	serveAddr     string
	historyDir    string
	historyBucket string
)

var ServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the analyzer as an HTTP service",
	Long: `Serve the analyzer over HTTP. POST an infrastructure file to
/api/analyze to get the JSON report; GET /healthz for liveness.`,
	RunE: runServe,
}

func init() {
	ServeCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "Listen address")
	ServeCmd.Flags().StringVar(&otlpEndpoint, "otlp-endpoint", "", "OTLP trace endpoint URL")
	ServeCmd.Flags().StringVar(&historyDir, "history-dir", "", "Archive reports under this directory")
	ServeCmd.Flags().StringVar(&historyBucket, "history-bucket", "", "Archive reports to this S3 bucket")
	viper.BindPFlag("addr", ServeCmd.Flags().Lookup("addr"))
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	logger := newLogger()

	shutdown, err := telemetry.Init(ctx, "costlens-server", version.Current, otlpEndpoint)
	if err != nil {
		return fmt.Errorf("initializing telemetry: %w", err)
	}
	defer shutdown(ctx)

	if viper.IsSet("addr") && !cmd.Flags().Changed("addr") {
		serveAddr = viper.GetString("addr")
	}

	var opts []server.Option
	switch {
	case historyBucket != "":
		cfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return fmt.Errorf("loading AWS config for history bucket: %w", err)
		}
		opts = append(opts, server.WithArchive(history.NewArchive(history.NewS3Store(cfg, historyBucket))))
	case historyDir != "":
		opts = append(opts, server.WithArchive(history.NewArchive(history.NewDirStore(historyDir))))
	}

	a := analyzer.New(analyzer.WithLogger(logger))
	api := server.New(logger, a, server.Config{
		Addr:            serveAddr,
		ShutdownTimeout: 10 * time.Second,
	}, opts...)
	return api.Start()
}
