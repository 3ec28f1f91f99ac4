// Package debounce delays handling a file until events for it have been
// quiet for a while.
//
// A single loop (Scheduler.Run) owns the map of pending paths. Each new
// event for a pending path re-arms its timer and bumps a generation
// counter; a timer that fires with an old generation is ignored, so a
// burst of events yields exactly one handler call.
package debounce
