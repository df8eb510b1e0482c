// Package server contains the broadcaster: the single consumer of the inbound
// queue that fans each message out to every registered connection.
package server

import (
	"errors"

	"linecast/internal/codec"
	"linecast/internal/metrics"
)

// broadcastLoop drains the inbound queue until shutdown. Receivers are the
// only producers; this loop is the only consumer.
func (s *Server) broadcastLoop() {
	for {
		select {
		case <-s.ctx.Done():
			return
		case msg := <-s.inbound:
			s.handleBroadcast(msg)
		}
	}
}

// handleBroadcast delivers one message to every connection in a registry
// snapshot, sender included. A write failure evicts only the failed
// destination; delivery to the rest of the round continues.
func (s *Server) handleBroadcast(msg Message) {
	snapshot := s.registry.Snapshot()
	s.logger.Debug("broadcasting message", "clients", len(snapshot), "origin", msg.Origin.ID())

	for _, c := range snapshot {
		if err := c.send(msg.Text); err != nil {
			metrics.DeliveryFailures.Inc()
			// A payload the destination's framing cannot carry says nothing
			// about the destination's health; only transport failures evict.
			if errors.Is(err, codec.ErrInvalidPayload) {
				s.logger.Warn("skipping unframeable payload for destination",
					"conn_id", c.ID(), "error", err)
				continue
			}
			s.evict(c, evictWriteError, err)
			continue
		}
		metrics.MessagesDelivered.Inc()
	}
}
