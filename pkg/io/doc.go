// Package io reads placement requests and base maps from disk and writes
// finished layout artifacts.
//
// # Request files
//
// Labels and images are GeoJSON FeatureCollections of Points in the
// projected coordinate space of the base map. A label feature looks like:
//
//	{
//	  "type": "Feature",
//	  "id": "City-NY",
//	  "geometry": {"type": "Point", "coordinates": [812.4, 184.2]},
//	  "properties": {
//	    "name": "New York",
//	    "caption": "pop. 8M",
//	    "color": "#333",
//	    "scale": 3,
//	    "length": 12,
//	    "url": "https://...",
//	    "isTop": false
//	  }
//	}
//
// Only "name" and "scale" are required. An image feature needs only
// properties.name, which names the image asset. Features whose geometry is
// null are skipped, so unmatched rows of an upstream join can be left in.
//
// Both documents are validated against JSON schemas embedded in this
// package before they are decoded. Validation failures are reported as
// INVALID_INPUT with every schema violation listed.
//
// # Base maps and artifacts
//
// [ImportTopology] reads a TopoJSON base map. [ExportArtifact] and
// [ImportArtifact] write and read merged artifacts; see package topology
// for their format.
package io
