// Package catalogue decodes the department, aisle and shelf hierarchy.
//
// The hierarchy is plain data: a shelf carries the names of its department
// and aisle so a flat list of shelves stays readable. Products on a shelf are
// listed through the shop service by shelf id.
package catalogue
