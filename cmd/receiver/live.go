package receiver

import (
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"satreceiver/internal/carousel"
	"satreceiver/internal/config"
	"satreceiver/internal/logging"
	"satreceiver/internal/metrics"
	"satreceiver/internal/pipeline"
	"satreceiver/internal/service"
	"satreceiver/internal/sink"
	"satreceiver/internal/transport"
)

var (
	liveListen      string
	liveOutput      string
	liveMetricsAddr string
	liveRuntimeFile string
	liveDebug       bool
)

// LiveCmd ingests frames from a live UDP endpoint.
var LiveCmd = &cobra.Command{
	Use:   "live",
	Short: "Receive and reassemble files from a live UDP broadcast",
	RunE:  runLive,
}

func init() {
	LiveCmd.Flags().StringVar(&liveListen, "listen", ":9200", "UDP address to listen on (multicast or unicast)")
	LiveCmd.Flags().StringVar(&liveOutput, "output", "./downloads", "directory to write completed files to")
	LiveCmd.Flags().StringVar(&liveMetricsAddr, "metrics-addr", ":9201", "address to serve Prometheus metrics on")
	LiveCmd.Flags().StringVar(&liveRuntimeFile, "runtime-config", "", "optional YAML file overriding tracker resource limits")
	LiveCmd.Flags().BoolVar(&liveDebug, "debug", false, "enable verbose per-frame logging")
}

func runLive(cmd *cobra.Command, args []string) error {
	config.DebugEnabled = liveDebug

	rt, err := config.LoadRuntime(liveRuntimeFile)
	if err != nil {
		return err
	}

	fileSink, err := sink.NewFileSink(liveOutput)
	if err != nil {
		return err
	}

	source, err := transport.NewUDPSource(liveListen)
	if err != nil {
		return err
	}
	defer source.Close()

	tracker := carousel.New(rt, fileSink)
	p := pipeline.New(source, tracker, logTimeEvent)

	metrics.Serve(liveMetricsAddr)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logging.Info("receiver: listening on %s, writing to %s", liveListen, liveOutput)
	return p.Run(ctx)
}

func logTimeEvent(ev service.TimeEvent) {
	logging.Info("time beacon: %s serverID=%q", ev.Instant.Format(time.RFC3339), ev.ServerID)
}
