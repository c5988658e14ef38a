// Package model defines the core data structures used throughout workshopper.
//
// This package contains the following main types:
//   - Identifier: A classified Steam user identifier (profile ID or vanity name)
//   - WorkshopItem: One scraped workshop item and its statistics
//   - Session: The state of a single scrape run for one identifier
//   - ItemDelta: The difference between two scrapes of the same item
//
// Multiple packages (crawler, extract, export, database) share these types,
// so they live in their own package to avoid import cycles.
//
// The models are serializable to JSON for export and database storage.
package model
