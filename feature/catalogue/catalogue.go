package catalogue

import (
	"fmt"
	"regexp"
	"strconv"

	"grocer/core/api"
)

// CommandCategories lists the whole department, aisle and shelf hierarchy.
const CommandCategories = "listproductcategories"

// Shelf is the leaf of the catalogue hierarchy. Its id selects a product listing.
type Shelf struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Department string `json:"department"`
	Aisle      string `json:"aisle"`
}

func (s Shelf) String() string {
	return s.Name + " Shelf"
}

// Aisle groups shelves.
type Aisle struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Shelves []Shelf `json:"shelves"`
}

func (a Aisle) String() string {
	return a.Name + " Aisle"
}

// Department groups aisles.
type Department struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Aisles []Aisle `json:"aisles"`
}

func (d Department) String() string {
	return d.Name + " Department"
}

// Build decodes a category listing into departments, keeping server order.
func Build(rec api.Record) []Department {
	departments := make([]Department, 0)
	for _, d := range rec.Records("Departments") {
		dept := Department{ID: d.String("Id"), Name: d.String("Name")}
		for _, a := range d.Records("Aisles") {
			aisle := Aisle{ID: a.String("Id"), Name: a.String("Name")}
			for _, s := range a.Records("Shelves") {
				aisle.Shelves = append(aisle.Shelves, Shelf{
					ID:         s.String("Id"),
					Name:       s.String("Name"),
					Department: dept.Name,
					Aisle:      aisle.Name,
				})
			}
			dept.Aisles = append(dept.Aisles, aisle)
		}
		departments = append(departments, dept)
	}
	return departments
}

// Shelves flattens the hierarchy into its shelves, in order.
func Shelves(departments []Department) []Shelf {
	var shelves []Shelf
	for _, d := range departments {
		for _, a := range d.Aisles {
			shelves = append(shelves, a.Shelves...)
		}
	}
	return shelves
}

// Search returns the shelves whose name matches re.
func Search(shelves []Shelf, re *regexp.Regexp) ([]Shelf, error) {
	if re == nil {
		return nil, fmt.Errorf("shelf pattern is nil: %w", api.ErrInvalidArgument)
	}
	matches := make([]Shelf, 0)
	for _, s := range shelves {
		if re.MatchString(s.Name) {
			matches = append(matches, s)
		}
	}
	return matches, nil
}

// ValidShelfID reports whether id is a positive integer.
func ValidShelfID(id string) bool {
	n, err := strconv.Atoi(id)
	return err == nil && n > 0
}
