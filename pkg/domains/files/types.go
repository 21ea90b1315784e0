// Package files guards read, write and delete operations on files by size,
// name and content.
package files

import "mercator-hq/guard/pkg/guard"

// Shapes of the Operation variant set.
const (
	ShapeRead   guard.Shape = "read"
	ShapeWrite  guard.Shape = "write"
	ShapeDelete guard.Shape = "delete"
)

// Shapes returns every case of Operation.
func Shapes() []guard.Shape {
	return []guard.Shape{ShapeRead, ShapeWrite, ShapeDelete}
}

// Operation is the closed set of file operations.
type Operation interface {
	guard.Variant
	Name() string
	isOperation()
}

// Read reads a file of the given size.
type Read struct {
	Filename string `json:"filename"`
	Size     int64  `json:"size"`
}

// Write writes Content to a file.
type Write struct {
	Filename string `json:"filename"`
	Size     int64  `json:"size"`
	Content  string `json:"content"`
}

// Delete removes a file.
type Delete struct {
	Filename string `json:"filename"`
	Size     int64  `json:"size"`
}

func (Read) Shape() guard.Shape   { return ShapeRead }
func (Write) Shape() guard.Shape  { return ShapeWrite }
func (Delete) Shape() guard.Shape { return ShapeDelete }

func (o Read) Name() string   { return o.Filename }
func (o Write) Name() string  { return o.Filename }
func (o Delete) Name() string { return o.Filename }

func (Read) isOperation()   {}
func (Write) isOperation()  {}
func (Delete) isOperation() {}
