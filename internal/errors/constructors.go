package errors

// Convenience functions for common error patterns

// Config errors

func ConfigNotFound(path string) *MetricsError {
	return New(CategoryConfig, SeverityFatal, "configuration file not found").
		WithContext("path", path)
}

func ConfigParseFailed(key, value string, cause error) *MetricsError {
	return Wrap(cause, CategoryConfig, SeverityFatal, "malformed configuration value").
		WithContext("key", key).
		WithContext("value", value)
}

func EmptyMetricName(kind string) *MetricsError {
	return New(CategoryConfig, SeverityFatal, "metric name must be a non-empty string").
		WithContext("metric_kind", kind)
}

func DetailLevelConflict(name, registeredAs string) *MetricsError {
	return New(CategoryConfig, SeverityFatal, "already registered at the other detail level").
		WithContext("metric", name).
		WithContext("registered_as", registeredAs)
}

func BackendRegistration(name string, cause error) *MetricsError {
	return Wrap(cause, CategoryConfig, SeverityFatal, "backend collector registration failed").
		WithContext("metric", name)
}

func ValidationFailed(field, reason string) *MetricsError {
	return New(CategoryValidation, SeverityFatal, "validation failed").
		WithContext("field", field).
		WithContext("reason", reason)
}

// Lifecycle errors

func StartupFailed(component string, cause error) *MetricsError {
	return Wrap(cause, CategoryLifecycle, SeverityFatal, "component failed to start").
		WithContext("component", component)
}

func ShutdownTimeout(component string, cause error) *MetricsError {
	return Wrap(cause, CategoryShutdown, SeverityError, "component did not stop within timeout").
		WithContext("component", component)
}

// Publish errors

func PublishFailed(subject string, cause error) *MetricsError {
	return Wrap(cause, CategoryPublish, SeverityError, "metrics publish failed").
		WithContext("subject", subject)
}
