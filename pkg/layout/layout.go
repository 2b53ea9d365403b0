// Package layout provides the drawable model the routing packages emit
// into: opaque layer identities, geometry elements, and an append-only
// element group with spatial queries.
//
// The routers never read back from a [Group]; they accumulate rectangles
// and via instances into it, and the caller later merges the group into a
// cell or hands it to a renderer.
//
// # Layers
//
// A [LayerKey] identifies a process layer and a purpose on that layer. The
// routing packages treat layer keys as atoms: they compare them and forward
// them, but never interpret them. Resolving keys against a real process
// layer stack is the caller's concern.
package layout

import "strings"

// Purpose distinguishes uses of the same process layer.
type Purpose string

const (
	// PurposeDrawing is regular drawn geometry.
	PurposeDrawing Purpose = "drawing"
	// PurposePin marks pin shapes.
	PurposePin Purpose = "pin"
	// PurposeObstruction marks keep-out geometry.
	PurposeObstruction Purpose = "obstruction"
	// PurposeLabel marks text label shapes.
	PurposeLabel Purpose = "label"
)

// LayerKey names a process layer and purpose. Keys are comparable values;
// two keys are the same layer iff they are equal.
type LayerKey struct {
	Name    string
	Purpose Purpose
}

// Layer returns the drawing-purpose key for the named layer.
func Layer(name string) LayerKey {
	return LayerKey{Name: name, Purpose: PurposeDrawing}
}

// WithPurpose returns the same layer under a different purpose.
func (k LayerKey) WithPurpose(p Purpose) LayerKey {
	return LayerKey{Name: k.Name, Purpose: p}
}

func (k LayerKey) String() string {
	if k.Purpose == "" || k.Purpose == PurposeDrawing {
		return k.Name
	}
	return k.Name + "." + string(k.Purpose)
}

// ParseLayer parses the string form produced by [LayerKey.String]:
// "m1" for drawing geometry, "m1.pin" for other purposes.
func ParseLayer(s string) LayerKey {
	name, purpose, ok := strings.Cut(s, ".")
	if !ok {
		return Layer(name)
	}
	return LayerKey{Name: name, Purpose: Purpose(purpose)}
}

// Drawer is anything that can render itself into a group.
type Drawer interface {
	Draw(dst *Group)
}
