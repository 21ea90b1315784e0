// Package retention prunes audit records older than the configured number of
// days or beyond a maximum record count, on demand or on a cron schedule.
package retention
