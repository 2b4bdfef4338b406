// Package clock keeps wall-clock reads at the edges of the service.
//
// Triggers (cron, HTTP, message consumers) read the current instant once and
// pass it down as an explicit reference time, so evaluation code never calls
// time.Now() itself.
package clock
