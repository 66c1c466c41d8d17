package receiver

import (
	"os"

	"github.com/spf13/cobra"

	"satreceiver/internal/carousel"
	"satreceiver/internal/config"
	"satreceiver/internal/logging"
	"satreceiver/internal/metrics"
	"satreceiver/internal/pipeline"
	"satreceiver/internal/sink"
	"satreceiver/internal/transport"
)

var (
	replayOutput      string
	replayMetricsAddr string
	replayRuntimeFile string
	replayDebug       bool
)

// ReplayCmd reassembles files from a recorded KISS-framed capture
// instead of a live socket, for offline testing and reprocessing.
var ReplayCmd = &cobra.Command{
	Use:   "replay <capture-file>",
	Short: "Reassemble files from a recorded KISS capture",
	Args:  cobra.ExactArgs(1),
	RunE:  runReplay,
}

func init() {
	ReplayCmd.Flags().StringVar(&replayOutput, "output", "./received", "directory to write completed files to")
	ReplayCmd.Flags().StringVar(&replayMetricsAddr, "metrics-addr", "", "optional address to serve Prometheus metrics on")
	ReplayCmd.Flags().StringVar(&replayRuntimeFile, "runtime-config", "", "optional YAML file overriding tracker resource limits")
	ReplayCmd.Flags().BoolVar(&replayDebug, "debug", false, "enable verbose per-frame logging")
}

func runReplay(cmd *cobra.Command, args []string) error {
	config.DebugEnabled = replayDebug

	rt, err := config.LoadRuntime(replayRuntimeFile)
	if err != nil {
		return err
	}

	fileSink, err := sink.NewFileSink(replayOutput)
	if err != nil {
		return err
	}

	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	source := transport.NewReplaySource(f)

	tracker := carousel.New(rt, fileSink)
	p := pipeline.New(source, tracker, logTimeEvent, pipeline.WithAgeOutInterval(0))

	if replayMetricsAddr != "" {
		metrics.Serve(replayMetricsAddr)
	}

	logging.Info("receiver: replaying %s, writing to %s", args[0], replayOutput)
	return p.Run(cmd.Context())
}
