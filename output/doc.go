// SPDX-License-Identifier: EPL-2.0

/*
Package output defines the contract between a player and an audio device.

A Device negotiates its Format once, at open, and then calls
Renderer.Render once per period from its callback thread. Backends that pull
arbitrary byte counts go through a PeriodBuffer so the renderer only ever sees
whole periods.

Only one device may be open per process; every constructor claims the session
with ClaimSession and a second open fails with ErrDeviceBusy.

The in-tree devices need no audio hardware:

	NullDevice     paced goroutine that renders and discards
	ManualDevice   renders one period per Tick, with error injection
	WAVFileDevice  ManualDevice that appends each period to a WAV file

Hardware backends live in output/otosink and output/malgosink.
*/
package output
