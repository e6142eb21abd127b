// Package mongo connects to MongoDB and implements the catalog,
// subscription, history and testimonial stores on top of it.
//
// Identifiers are stored as canonical UUID strings. The one-live-
// subscription rule is a unique index on customer_id restricted to
// documents with live set to true; Transition keeps that flag in step with
// the status in the same update. Call EnsureIndexes once at start-up.
//
//	db, err := mongo.NewWithDatabase(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	if err := mongo.EnsureIndexes(ctx, db); err != nil {
//		return err
//	}
//	repo := mongo.NewSubscriptionRepository(db)
package mongo
