// Package errors provides error classification for the extraction pipeline.
//
// Errors fall into three classes that drive how the pipeline driver reacts:
//
//   - transient: a dependency degraded. The run continues, the feature that
//     needed the dependency is skipped and a warning is recorded.
//   - invalid: bad input or configuration. Raised at construction time these
//     are fatal; raised per-topic (for example an unsupported schema format)
//     they become warnings.
//   - fatal: the run aborts. Only the primary broker connection and
//     construction-time configuration problems are fatal.
//
// Use the Wrap* helpers to attach component and operation context:
//
//	if err := client.Topics(); err != nil {
//	    return errors.WrapFatal(err, "Source", "discover", "list topics")
//	}
//
// Sentinel variables (ErrInvalidConfig, ErrBrokerUnavailable, ...) support
// errors.Is checks across package boundaries.
package errors
