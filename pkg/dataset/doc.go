// Package dataset loads the province → city → connections reference data.
//
// A dataset is a two-level JSON object. Each city carries its coordinates as
// a [lat, lon] pair and the names of the cities it connects to:
//
//	{
//	  "West Java": {
//	    "Bandung": {"coordinates": [-6.9175, 107.6191], "connections": ["Cimahi", "Sumedang"]},
//	    "Cimahi":  {"coordinates": [-6.8841, 107.5413], "connections": ["Bandung"]}
//	  }
//	}
//
// # Loading
//
// [Load] reads a file and returns typed errors (FILE_NOT_FOUND, INVALID_FORMAT)
// from pkg/errors. [LoadOrEmpty] is the startup entry point: it reports a
// failure once through a report.Reporter and continues with an empty dataset,
// so a broken file never stops the process.
//
// Entries that cannot be used (bad coordinates, undecodable records) are
// quarantined: they are left out of the dataset and listed in
// [Dataset.Issues]. Connections are not resolved at load time; [Check] lists
// the ones that point at unknown cities.
//
// # Sources
//
// Besides files ([FileSource]), a dataset can be read from a MongoDB
// collection with [MongoSource] or from SQLite or PostgreSQL tables with
// [SQLSource]. All of them produce the same [Dataset] and apply the same
// quarantine rules.
//
// # Concurrency
//
// A Dataset is immutable once built and safe for concurrent reads.
package dataset
