// Package httpserver runs the catering API's net/http server.
//
// Server binds the listener up front, so a bad address fails Run right
// away, and shuts down on context cancellation, SIGINT or SIGTERM. After
// the listener drains, shutdown hooks registered with WithShutdownHook
// release background resources (the retention scheduler, database pools)
// within the same deadline.
//
//	srv := httpserver.NewFromConfig(cfg,
//	    httpserver.WithLogger(log),
//	    httpserver.WithShutdownHook("scheduler", sched.Stop),
//	)
//	err := srv.Run(ctx, router)
//
// LivenessHandler and ReadinessHandler serve the /health probes; readiness
// runs the registered Checks concurrently and answers 503 when any fails.
package httpserver
