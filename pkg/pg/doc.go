// Package pg connects to PostgreSQL through pgx and implements the catalog,
// subscription, history and testimonial stores.
//
// The schema ships embedded and is applied with goose:
//
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	if err := pg.Migrate(ctx, pool, cfg, log); err != nil {
//		return err
//	}
//
// A partial unique index on subscriptions(customer_id) over active and
// paused rows enforces one live subscription per customer. Lifecycle
// transitions are one UPDATE guarded on the current status.
package pg
