// Package io exports flattened province rows as JSON and CSV.
//
// # JSON Format
//
// [WriteJSON] writes both tables in one document:
//
//	{
//	  "province": "West Java",
//	  "nodes": [
//	    {"city": "Bandung", "lat": -6.9175, "lon": 107.6191}
//	  ],
//	  "edges": [
//	    {"lat1": -6.9175, "lon1": 107.6191, "lat2": -6.8841, "lon2": 107.5413}
//	  ]
//	}
//
// # CSV Format
//
// CSV has one table per file. [WriteNodesCSV] writes city,lat,lon and
// [WriteEdgesCSV] writes lat1,lon1,lat2,lon2, each with a header row.
// Coordinates are written with the shortest representation that parses back
// to the same value, so no precision is lost.
package io
