// Package topology assembles layout artifacts: a base TopoJSON map with an
// extra geometry collection holding every placed image and label.
//
// # Artifact format
//
// The base document is passed through unchanged. [Merge] adds one object,
// named "objs" by default, shaped like this:
//
//	"objs": {
//	  "type": "GeometryCollection",
//	  "geometries": [
//	    {
//	      "type": "Point",
//	      "id": "City-NY",
//	      "coordinates": [812.4, 180.2],
//	      "properties": {
//	        "kind": "label",
//	        "name": "new york",
//	        "caption": "pop. 8M",
//	        "color": "#333",
//	        "url": "https://...",
//	        "pos": {"x": 790.1, "y": 176.2, "w": 44.6, "h": 8, "cw": 20.3, "ch": 2.667, "th": 10.667}
//	      }
//	    }
//	  ]
//	}
//
// Images come first in input order, then labels in the order they were
// placed. Numbers in the collection are rounded to three decimals unless
// another precision is requested with [WithPrecision].
//
// # Hit testing
//
// [Artifact.Hit] returns the objects whose rectangle contains a point, in
// collection order. Renderers act on the first match. The index behind it is
// built once and is safe for concurrent use.
package topology
