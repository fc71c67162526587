package game

// Object is a thing that can be picked up, dropped and moved between
// containers.
type Object struct {
	Thing
}

// Item is implemented by every object variant.
type Item interface {
	Entity
	GetObject() *Object
}

func (o *Object) GetObject() *Object {
	return o
}

func (o *Object) Variant() Variant {
	return VariantObject
}

type Container struct {
	Object
}

func (c *Container) Variant() Variant {
	return VariantContainer
}

func (c *Container) containable() {}

type OpenableContainer struct {
	Container
	OpenState
}

func (c *OpenableContainer) Variant() Variant {
	return VariantOpenableContainer
}

type LockableContainer struct {
	OpenableContainer
	LockState
}

func (c *LockableContainer) Variant() Variant {
	return VariantLockableContainer
}

// Furniture is something players and objects can be positioned on, under or
// beside.
type Furniture struct {
	Object
	PositionState
}

func (f *Furniture) Variant() Variant {
	return VariantFurniture
}

// Clothing can be worn, and has pockets.
type Clothing struct {
	Object
	WearState
}

func (c *Clothing) Variant() Variant {
	return VariantClothing
}

func (c *Clothing) containable() {}

type HeldObject struct {
	Object
	HoldState
}

func (h *HeldObject) Variant() Variant {
	return VariantHeldObject
}
