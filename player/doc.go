// SPDX-License-Identifier: EPL-2.0

/*
Package player mixes preloaded, streamed and synthesized sources onto one
output device.

Two kinds of goroutine are involved. The device calls the player's renderer
once per period; that path owns every playing source, never allocates and
never waits. Everything else (PlayFile, StopSource and friends) runs on
control goroutines, prepares sources up front and talks to the render path
only through bounded lock-free queues:

	control ──commands──▶ render ──events──▶ PollEvents / status channel
	                        │
	                        └──graveyard──▶ reaper (releases resources)

Commands are applied in the order they were queued, at period boundaries.
A full queue is reported as ErrBackpressure instead of blocking.

Stopping, replacing or reaching the end of a source fades it out over a fixed
duration; the Stopped event for it is sent exactly once, after the fade.
Seeking jumps without a fade.
*/
package player
