// Package pipeline wires the frame source, parser, demultiplexer, and
// carousel tracker into the single ingest loop both CLI commands
// drive.
package pipeline

import (
	"context"
	"errors"
	"time"

	"satreceiver/internal/carousel"
	"satreceiver/internal/config"
	"satreceiver/internal/fileservice"
	"satreceiver/internal/frame"
	"satreceiver/internal/logging"
	"satreceiver/internal/metrics"
	"satreceiver/internal/service"
	"satreceiver/internal/transport"
)

// TimeSink receives decoded time-service events. The pipeline logs
// each event at debug level itself and hands it to the one TimeSink
// passed to New.
type TimeSink func(service.TimeEvent)

// Pipeline ties one frame source to a carousel tracker through the
// link-frame parser and service router.
type Pipeline struct {
	source  transport.FrameSource
	router  *service.Router
	tracker *carousel.Tracker

	ageOutEvery time.Duration
}

// Option configures a Pipeline at construction time.
type Option func(*Pipeline)

// WithAgeOutInterval overrides how often the tracker's age-out sweep
// runs while Run is live-ingesting; zero disables periodic sweeping
// (replay mode has no use for it since there is no "idle" to detect).
func WithAgeOutInterval(d time.Duration) Option {
	return func(p *Pipeline) { p.ageOutEvery = d }
}

// New builds a Pipeline over source, feeding file-service records to
// tracker (which emits completed files to its own sink) and time
// events to onTime (which may be nil).
func New(source transport.FrameSource, tracker *carousel.Tracker, onTime TimeSink, opts ...Option) *Pipeline {
	p := &Pipeline{source: source, tracker: tracker, ageOutEvery: 30 * time.Second}
	p.router = service.NewRouter()

	p.router.Register(config.ServiceTime, func(payload []byte) {
		ev, ok := service.ParseTime(payload)
		if !ok {
			return
		}
		logging.Debug("time: %s serverID=%q", ev.Instant.Format(time.RFC3339), ev.ServerID)
		if onTime != nil {
			onTime(ev)
		}
	})

	p.router.Register(config.ServiceFile, func(payload []byte) {
		ann, blk, err := fileservice.Parse(payload)
		if err != nil {
			metrics.FramesDropped.WithLabelValues("malformed_record").Inc()
			logging.Debug("fileservice: %v", err)
			return
		}
		if ann != nil {
			tracker.OnAnnouncement(*ann)
		}
		if blk != nil {
			tracker.OnBlock(*blk)
		}
	})

	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run ingests frames until ctx is cancelled or the source closes,
// parsing and dispatching each one, and periodically sweeping the
// tracker's age-out policy.
func (p *Pipeline) Run(ctx context.Context) error {
	if p.ageOutEvery > 0 {
		ticker := time.NewTicker(p.ageOutEvery)
		defer ticker.Stop()
		go func() {
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					p.tracker.SweepAgeOut()
				}
			}
		}()
	}

	for {
		raw, err := p.source.Next(ctx)
		if err != nil {
			if errors.Is(err, transport.ErrSourceClosed) || errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}

		f, err := frame.Parse(raw)
		if err != nil {
			metrics.FramesDropped.WithLabelValues("bad_frame").Inc()
			logging.Debug("frame: %v", err)
			continue
		}
		metrics.FramesTotal.Inc()
		p.router.Dispatch(f)
	}
}
