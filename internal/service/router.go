// Package service implements the service demultiplexer: synchronous,
// in-arrival-order dispatch of frame payloads to a handler keyed by
// service id, with unknown ids logged and counted but never fatal.
package service

import (
	"fmt"

	"satreceiver/internal/frame"
	"satreceiver/internal/logging"
	"satreceiver/internal/metrics"
)

// Handler processes one frame payload for a registered service id.
type Handler func(payload []byte)

// Router dispatches frame payloads by service id.
type Router struct {
	handlers map[byte]Handler
}

// NewRouter returns an empty router.
func NewRouter() *Router {
	return &Router{handlers: make(map[byte]Handler)}
}

// Register installs the handler for a service id, replacing any
// previous registration.
func (r *Router) Register(serviceID byte, h Handler) {
	r.handlers[serviceID] = h
}

// Dispatch routes a parsed frame to its handler. Unknown service ids
// are hex-dumped at debug level and counted, never treated as fatal.
func (r *Router) Dispatch(f frame.Frame) {
	h, ok := r.handlers[f.ServiceID]
	if !ok {
		metrics.UnknownServiceTotal.WithLabelValues(fmt.Sprintf("0x%02x", f.ServiceID)).Inc()
		logging.Debug("unknown service 0x%02x: %s", f.ServiceID, logging.HexDump(f.Payload))
		return
	}
	h(f.Payload)
}
