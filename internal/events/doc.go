// Package events provides the in-process event bus that coordinates dashboard
// consumers with the pipeline and assignment engines.
//
// Mutating components publish typed events after a successful change;
// consumers subscribe and re-derive their views on receipt. Delivery is
// best-effort with bounded per-subscriber buffers, so publishers never block
// on a slow consumer.
package events
