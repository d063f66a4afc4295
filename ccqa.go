// Package ccqa extracts Question microdata from web-archive captures.
// It finds pages marked up with the schema.org Question vocabulary,
// prunes each Question subtree down to its microdata-bearing markup,
// and emits one compact record per page for corpus construction.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., goquery/, html/, sqlite/).
package ccqa
