// Package dateutil parses post dates and turns readable date patterns such
// as "MMMM D, YYYY" into Go layouts for templates.
package dateutil
