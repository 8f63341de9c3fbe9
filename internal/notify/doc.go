// Package notify selects and schedules partner notification banners.
//
// The server side picks one eligible notification for a page or content
// item (Selector) and keeps per-visitor view counts (ViewCounter). Banner is
// the display state machine for one mounted banner:
//
//	Idle -> Fetching -> Scheduled -> Shown -> Closed -> Idle
//
// Hiding the banner or changing the page/item cancels any in-flight fetch and
// all timers and returns to Idle. A view is counted only when a banner
// actually becomes visible.
package notify
