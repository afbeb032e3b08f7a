// Package logging builds the application's structured loggers.
//
// Loggers are standard log/slog loggers. When PHI redaction is enabled
// the handler rewrites patient identifiers (SSNs, Medicare beneficiary
// identifiers, medical record numbers, phone numbers, email addresses)
// in messages and attribute values before they reach the output, and
// fully masks values logged under sensitive keys such as "ssn" or
// "patient_name".
//
// Usage:
//
//	logger, err := logging.New(logging.Config{
//		Level:     "info",
//		Format:    "json",
//		RedactPHI: true,
//	})
//	if err != nil {
//		return err
//	}
//	logger.Info("determination stored", "subject_id", subjectID)
package logging
