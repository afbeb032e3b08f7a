// Package codes provides the HCPCS and ICD-10 reference data used when
// auditing claims against glucose monitor coverage policies.
//
// The package ships a seed table of CGM billing codes (sensors,
// transmitters, receivers, and the all-inclusive monthly supply
// allowance) with their modifier, bundling, and LCD associations, plus
// the diabetes ICD-10 prefix set. A SQLite-backed store serves lookups
// and searches over the seeded data.
package codes
