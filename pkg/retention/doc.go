// Package retention purges cancelled subscriptions after a retention period.
//
// Cancelled subscriptions are kept so customers and administrators can see
// what happened. Purger.Run removes those cancelled before now minus the
// configured retention; Scheduler runs it on a cron schedule inside the
// server process. The same Purger backs the purge CLI command.
package retention
