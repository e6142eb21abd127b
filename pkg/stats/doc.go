// Package stats aggregates subscriptions into an administrator report.
//
// PeriodRevenue is the sum of plan prices of active subscriptions created in
// the requested range; it says nothing about recurring revenue. For that the
// report carries ActiveMonthlyRevenue, the sum of monthly estimates across
// all active subscriptions. Reactivations are listed with Computed set to
// false: the figure is not tracked and must not be shown as zero.
//
// The four aggregates run concurrently. Reports can be cached through any
// Cache, for example redis.Storage.
package stats
