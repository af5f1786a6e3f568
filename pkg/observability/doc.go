/*
Package observability turns engine lifecycle hooks into logs and Prometheus metrics.

Both helpers return domain.LifecycleHooks, so they compose with each other and with
user hooks through LifecycleHooks.Merge:

	metrics, _ := observability.NewMetrics(prometheus.DefaultRegisterer)
	hooks := observability.LoggingHooks(logger).Merge(metrics.Hooks())
	engine, _ := weaver.New(weaver.WithLifecycleHooks(hooks))
*/
package observability
