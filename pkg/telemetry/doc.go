// Package telemetry provides observability for Atlas.
//
// # Components
//
//   - logging: Structured logging with PHI redaction
//   - metrics: Prometheus metrics collection
//
// # Usage
//
//	// Build a logger
//	logger, err := logging.New(logging.Config{
//		Level:     cfg.Telemetry.Logging.Level,
//		Format:    cfg.Telemetry.Logging.Format,
//		RedactPHI: cfg.Telemetry.Logging.RedactPHI,
//	})
//
//	// Record metrics
//	collector := metrics.NewCollector(&metrics.Config{Enabled: true}, nil)
//	engine.WithObserver(collector)
//
// # PHI Protection
//
// With redaction enabled, patient identifiers are rewritten before log
// output is produced:
//
//   - SSN: 123-45-6789 -> ***-**-****
//   - MBI: 1EG4-TE5-MK73 -> ****-***-****
//   - MRN: MRN 1234567 -> MRN ***
//   - Email addresses and phone numbers
//
// Values logged under sensitive keys (ssn, mrn, patient_name, dob) are
// fully masked regardless of content.
package telemetry
