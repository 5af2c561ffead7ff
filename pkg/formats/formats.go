// Package formats provides parsers for the binary entry formats stored in
// PackFiles: loc tables, db table headers, rigid model headers and TGA
// images.
package formats
