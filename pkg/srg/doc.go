// Package srg handles symbol mapping tables in SRG format and
// the rename tables used to derive developer facing names.
package srg
